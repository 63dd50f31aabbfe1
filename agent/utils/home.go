package utils

import (
	"os"
	"os/user"
)

// IndyBaseDir returns the directory under which the indy client keeps its
// wallet files.
func IndyBaseDir() string {
	if v := os.Getenv("HOME"); v != "" {
		return v
	}
	currentUser, err := user.Current()
	if err != nil {
		panic(err)
	}
	return currentUser.HomeDir
}
