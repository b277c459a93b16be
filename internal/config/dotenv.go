package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is the dotenv file read when neither --env-file nor ENV_FILE names one.
const DefaultEnvFile = ".env"

// DotenvPath picks the dotenv file from args (--env-file), then from the
// ENV_FILE variable, then DefaultEnvFile. It runs before flag parsing.
func DotenvPath(args []string, lookup func(string) (string, bool)) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if v, ok := strings.CutPrefix(arg, "--env-file="); ok {
			return v
		}
		if arg == "--env-file" && i+1 < len(args) {
			return args[i+1]
		}
	}
	if v, ok := lookup("ENV_FILE"); ok && v != "" {
		return v
	}
	return DefaultEnvFile
}

// LoadDotenv loads the dotenv file chosen by DotenvPath into the process
// environment so its values reach env-backed flags. Variables already set
// win. A missing file is not an error.
func LoadDotenv(args []string) error {
	path := DotenvPath(args, os.LookupEnv)
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}
