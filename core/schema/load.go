package schema

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"lake-validator/core/storage"

	"github.com/minio/minio-go/v7"
)

// Config holds configuration for locating schema documents.
type Config struct {
	// Source selects where documents are read from (directory, storage).
	Source string `mapstructure:"source" default:"directory"`
	// Directory is the local directory holding one document per resource type.
	Directory string `mapstructure:"directory" default:"./schema"`
	// Prefix is the object key prefix used when Source is storage.
	Prefix string `mapstructure:"prefix" default:"schema/"`
}

const (
	SourceDirectory = "directory"
	SourceStorage   = "storage"
)

// Load reads every schema document in dir.
// Hidden files and sub directories are ignored.
func Load(dir string) (Index, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{Path: dir, Err: err}
	}

	idx := make(Index)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		filePath := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, &LoadError{Path: filePath, Err: err}
		}

		if err := idx.add(filePath, data); err != nil {
			return nil, err
		}
	}

	return idx, nil
}

// LoadFromStorage reads every schema document stored under prefix in bucket.
func LoadFromStorage(ctx context.Context, client storage.Client, bucket, prefix string) (Index, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, &LoadError{Path: bucket, Err: fmt.Errorf("failed to check bucket existence: %w", err)}
	}
	if !exists {
		return nil, &LoadError{Path: bucket, Err: fmt.Errorf("bucket %s does not exist", bucket)}
	}

	idx := make(Index)
	opts := minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}

	for obj := range client.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return nil, &LoadError{Path: prefix, Err: obj.Err}
		}
		if strings.HasSuffix(obj.Key, "/") || strings.HasPrefix(path.Base(obj.Key), ".") {
			continue
		}

		data, err := readObject(ctx, client, bucket, obj.Key)
		if err != nil {
			return nil, &LoadError{Path: obj.Key, Err: err}
		}

		if err := idx.add(obj.Key, data); err != nil {
			return nil, err
		}
	}

	return idx, nil
}

func readObject(ctx context.Context, client storage.Client, bucket, key string) ([]byte, error) {
	reader, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return io.ReadAll(reader)
}

// add decodes one document and registers it under its Type.
func (idx Index) add(source string, data []byte) error {
	var node Node
	if err := json.Unmarshal(data, &node); err != nil {
		return &LoadError{Path: source, Err: fmt.Errorf("invalid schema document: %w", err)}
	}
	if node.Type == "" {
		return &LoadError{Path: source, Err: errors.New("missing Type field")}
	}
	if _, dup := idx[node.Type]; dup {
		return &LoadError{Path: source, Err: fmt.Errorf("duplicate schema for type %s", node.Type)}
	}

	idx[node.Type] = &node
	return nil
}
