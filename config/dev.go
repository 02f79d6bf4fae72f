package config

// DEV is set for builds of the compiler made by its developers, DEBUG_MODE
// prints the token stream and the external commands being run.
var (
	DEV        bool
	DEBUG_MODE bool
)

func SetDevMode(dev bool) { DEV = dev }

func SetDebugMode(debug bool) { DEBUG_MODE = debug }
