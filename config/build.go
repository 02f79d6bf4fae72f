package config

type BuildType int

const (
	RELEASE BuildType = iota
	DEBUG
)

func (bt BuildType) String() string {
	switch bt {
	case RELEASE:
		return "release"
	case DEBUG:
		return "debug"
	}
	return "unknown"
}

// OptLevel is the optimization flag handed to the assembler.
func (bt BuildType) OptLevel() string {
	switch bt {
	case RELEASE:
		return "-O2"
	case DEBUG:
		return "-O0"
	}
	panic("invalid build type: " + bt.String())
}
