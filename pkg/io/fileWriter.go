package io

import (
	"fmt"
	"os"
	"path/filepath"
)

// MakeDirForFile creates a directory provided in the filePath. It uses desc
// to describe the owner of the file in the error message.
func MakeDirForFile(filePath string, desc string) error {
	dir := filepath.Dir(filePath)
	err := os.MkdirAll(dir, os.ModePerm)
	if err != nil {
		return fmt.Errorf("could not create dir for %s: %w", desc, err)
	}
	return nil
}
