package app

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/vk/confwatch/internal/generator"
)

// newEnvLookup resolves forwarded variables from the process environment,
// falling back to the values in envFile. Like godotenv.Load, the file never
// overrides a variable that is already set.
func newEnvLookup(fs afero.Fs, envFile string) (generator.EnvLookup, error) {
	if envFile == "" {
		return os.LookupEnv, nil
	}

	f, err := fs.Open(envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open env file %s: %w", envFile, err)
	}
	defer f.Close()

	fileEnv, err := godotenv.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse env file %s: %w", envFile, err)
	}

	return func(name string) (string, bool) {
		if v, ok := os.LookupEnv(name); ok {
			return v, true
		}
		v, ok := fileEnv[name]
		return v, ok
	}, nil
}
