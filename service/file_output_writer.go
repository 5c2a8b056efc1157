package service

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/astdiff/domain"
)

// FileOutputWriter writes reports to files or to the provided writer
type FileOutputWriter struct {
	status io.Writer // where status messages go, typically stderr
}

// NewFileOutputWriter creates a new FileOutputWriter.
func NewFileOutputWriter(status io.Writer) *FileOutputWriter {
	if status == nil {
		status = os.Stderr
	}
	return &FileOutputWriter{status: status}
}

// Write implements domain.ReportWriter. When outputPath is set the parent
// directory must exist; the file is created or truncated.
func (w *FileOutputWriter) Write(writer io.Writer, outputPath string, format domain.OutputFormat, writeFunc func(io.Writer) error) error {
	if outputPath == "" {
		if writer == nil {
			return domain.NewOutputError("no output writer specified", nil)
		}
		return writeFunc(writer)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return domain.NewOutputError(fmt.Sprintf("failed to create output file: %s", outputPath), err)
	}

	writeErr := writeFunc(file)
	closeErr := file.Close()
	if writeErr != nil {
		return writeErr
	}
	if closeErr != nil {
		return domain.NewOutputError(fmt.Sprintf("failed to close output file: %s", outputPath), closeErr)
	}

	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		absPath = outputPath
	}
	if format == "" {
		format = domain.OutputFormatText
	}
	fmt.Fprintf(w.status, "%s report written: %s\n", strings.ToUpper(string(format)), absPath)
	return nil
}
