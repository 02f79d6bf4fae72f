package config

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
)

const APP_NAME = "gala"

var DEFAULT_ENV_FILE string = `GALA_LLC=llc
GALA_CC=cc
GALA_BACKEND=llc
`

//go:embed env
var DEFAULT_DEV_ENV_FILE string

var GALA_CONFIG_DIR string

var ENVS *Envs

// Envs are the settings read from the env file of the config directory.
// Variables of the process environment with the same name take precedence.
type Envs struct {
	LLC string `env:"GALA_LLC"`
	CC  string `env:"GALA_CC"`
	// BACKEND selects the assembler: "llc" runs the llc binary, "llvm"
	// assembles in process.
	BACKEND string `env:"GALA_BACKEND"`
}

func DefaultEnvs() *Envs {
	return &Envs{LLC: "llc", CC: "cc", BACKEND: "llc"}
}

func (e *Envs) ShowAll(w io.Writer) {
	v := reflect.ValueOf(e)

	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	for i := 0; i < v.NumField(); i++ {
		field := v.Type().Field(i)
		fieldValue := v.Field(i)

		envTag := field.Tag.Get("env")
		if envTag != "" {
			fmt.Fprintf(w, "%s='%s'\n", envTag, fieldValue.String())
		}
	}
}

func SetupConfigDir() error {
	galaCfgDir, err := getConfigDir(APP_NAME)
	if err != nil {
		return err
	}
	GALA_CONFIG_DIR = galaCfgDir
	return nil
}

func SetupEnvFile() error {
	envFile := filepath.Join(GALA_CONFIG_DIR, "env")
	envs, err := loadEnvFile(envFile)
	if err != nil {
		return err
	}

	parsedEnvs := DefaultEnvs()
	err = MapEnvToStruct(envs, parsedEnvs)
	if err != nil {
		return err
	}
	err = MapEnvToStruct(processEnv(), parsedEnvs)
	if err != nil {
		return err
	}

	ENVS = parsedEnvs
	return nil
}

func processEnv() map[string]string {
	env := make(map[string]string)
	for _, entry := range os.Environ() {
		key, value, ok := strings.Cut(entry, "=")
		if ok && strings.HasPrefix(key, "GALA_") && value != "" {
			env[key] = value
		}
	}
	return env
}

func getConfigDir(appName string) (string, error) {
	var configDir string

	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		configDir = filepath.Join(configHome, appName)
	} else if homeDir, err := os.UserHomeDir(); err == nil {
		if os.Getenv("OS") == "Windows_NT" {
			configDir = filepath.Join(os.Getenv("APPDATA"), appName)
		} else {
			configDir = filepath.Join(homeDir, ".config", appName)
		}
	} else {
		return "", fmt.Errorf("could not determine home directory")
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}

	return configDir, nil
}

func loadEnvFile(path string) (map[string]string, error) {
	env := make(map[string]string)

	_, err := os.Stat(path)
	envFileCreated := os.IsNotExist(err)
	if err != nil && !envFileCreated {
		return nil, err
	}

	// NOTE: in development mode the env file is always rewritten because
	// developers might have changed the defaults for debugging
	if DEV {
		envFileCreated = true
	}

	if envFileCreated {
		var err error
		if DEV {
			err = writeStringToFile(path, DEFAULT_DEV_ENV_FILE)
		} else {
			err = writeStringToFile(path, DEFAULT_ENV_FILE)
		}
		if err != nil {
			return nil, err
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		env[key] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return env, nil
}

func writeStringToFile(fileName, content string) error {
	file, err := os.OpenFile(fileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString(content)
	if err != nil {
		return err
	}

	return nil
}

func MapEnvToStruct(data map[string]string, result any) error {
	v := reflect.ValueOf(result)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("expected a pointer to a struct, got %T", result)
	}
	v = v.Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		envTag := field.Tag.Get("env")
		if envTag != "" {
			if value, ok := data[envTag]; ok {
				if fieldValue.CanSet() && fieldValue.Kind() == reflect.String {
					fieldValue.SetString(value)
				}
			}
		}
	}

	return nil
}
