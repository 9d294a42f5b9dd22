package view

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ddp-ipb/ddp-admin/internal/client/api"
	"github.com/ddp-ipb/ddp-admin/internal/models"
)

// promptRecord walks the module's form fields and collects a record.
// Empty answers are omitted from the record entirely, never submitted
// as literal empty text, unless the field is required.
func promptRecord(in *bufio.Scanner, out io.Writer, fields []Field) (models.Record, error) {
	record := models.Record{}
	for _, f := range fields {
		value, err := promptField(in, out, f)
		if err != nil {
			return nil, err
		}
		if value != nil {
			record[f.Name] = value
		}
	}
	return record, nil
}

func promptField(in *bufio.Scanner, out io.Writer, f Field) (any, error) {
	label := f.Label
	if label == "" {
		label = f.Name
	}

	switch f.Kind {
	case Image:
		fmt.Fprintf(out, "%s (path file, kosongkan untuk lewati): ", label)
		path := strings.TrimSpace(readLine(in))
		if path == "" {
			if f.Required {
				return nil, fmt.Errorf("%s wajib diisi", label)
			}
			return nil, nil
		}
		return loadFile(path)

	case ImageList:
		var files []any
		for {
			fmt.Fprintf(out, "%s (path file, kosongkan untuk selesai): ", label)
			path := strings.TrimSpace(readLine(in))
			if path == "" {
				break
			}
			file, err := loadFile(path)
			if err != nil {
				return nil, err
			}
			files = append(files, file)
		}
		if len(files) == 0 {
			if f.Required {
				return nil, fmt.Errorf("%s wajib diisi", label)
			}
			return nil, nil
		}
		return files, nil

	case Number:
		fmt.Fprintf(out, "%s: ", label)
		text := strings.TrimSpace(readLine(in))
		if text == "" {
			if f.Required {
				return nil, fmt.Errorf("%s wajib diisi", label)
			}
			return nil, nil
		}
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("%s harus berupa angka", label)
		}
		return n, nil

	default: // Text, Date
		fmt.Fprintf(out, "%s: ", label)
		text := readLine(in)
		if strings.TrimSpace(text) == "" {
			if f.Required {
				return nil, fmt.Errorf("%s wajib diisi", label)
			}
			return nil, nil
		}
		return text, nil
	}
}

func loadFile(path string) (*api.File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("baca file %q: %w", path, err)
	}
	return &api.File{Name: filepath.Base(path), Content: content}, nil
}
