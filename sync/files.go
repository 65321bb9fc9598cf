package sync

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
)

//go:embed mappings/*.yaml
var embeddedMappingFiles embed.FS

// DefaultMappings holds the mapping files shipped with the bridge.
var DefaultMappings = EmbeddedMappings{Root: "mappings", Files: embeddedMappingFiles}

type MappingFile struct {
	Name   string
	Reader io.Reader
	Length int
}

type EmbeddedMappings struct {
	Root  string
	Files EmbeddedFS
}

type EmbeddedFS interface {
	Open(name string) (fs.File, error)
	ReadDir(name string) ([]fs.DirEntry, error)
	ReadFile(name string) ([]byte, error)
}

func (em EmbeddedMappings) MustFindRootMappingFile(filename string) (MappingFile, error) {
	var result MappingFile
	name := path.Join(em.Root, filename)
	mappings, err := em.Files.ReadFile(name)
	if err == nil {
		result.Name = name
		result.Reader = bytes.NewReader(mappings)
		result.Length = len(mappings)
	}
	return result, err
}

func (em EmbeddedMappings) MustFindDefaultsMappingFile() (MappingFile, error) {
	return em.MustFindRootMappingFile("defaults.yaml")
}

// MappingFileFromPath reads an operator supplied mapping file from disk.
func MappingFileFromPath(p string) (MappingFile, error) {
	var result MappingFile
	b, err := os.ReadFile(p)
	if err != nil {
		return result, fmt.Errorf("failed to read mapping file %s %w", p, err)
	}
	result.Name = p
	result.Reader = bytes.NewReader(b)
	result.Length = len(b)
	return result, nil
}

// MappingFileFromString wraps inline YAML, mostly useful for overrides in tests.
func MappingFileFromString(name, yaml string) MappingFile {
	return MappingFile{Name: name, Reader: bytes.NewReader([]byte(yaml)), Length: len(yaml)}
}
