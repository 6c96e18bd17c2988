package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/xdsmgen/pkg/errors"
	"github.com/matzehuels/xdsmgen/pkg/viewer"
)

// ReadJSON decodes viewer data from r.
//
// ReadJSON returns an INVALID_INPUT error if:
//   - The JSON is malformed
//   - The tree is missing
//   - A system in the tree has an empty name (the root excepted)
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*viewer.Data, error) {
	var d viewer.Data
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode viewer data")
	}
	if d.Tree == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "viewer data has no tree")
	}
	if err := checkNames(d.Tree, ""); err != nil {
		return nil, err
	}
	return &d, nil
}

func checkNames(s *viewer.System, path string) error {
	for i, c := range s.Children {
		if c == nil || c.Name == "" {
			return errors.New(errors.ErrCodeInvalidInput, "child %d of %q has no name", i, path)
		}
		p := c.Name
		if path != "" {
			p = path + "." + c.Name
		}
		if err := checkNames(c, p); err != nil {
			return err
		}
	}
	return nil
}

// ImportJSON reads a viewer data file at path.
// A missing file is reported with FILE_NOT_FOUND.
func ImportJSON(path string) (*viewer.Data, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "viewer data file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
