package operators

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/tarungka/flowplan/plan"
)

// FileOutputOperator appends every record it receives to a local file, one
// record per line. It needs no live service, which makes it the sink of
// planctl's demo plan.
type FileOutputOperator struct {
	In plan.InputPort

	Path string

	file   *os.File
	writer *bufio.Writer
}

func (f *FileOutputOperator) Setup() error {
	if f.Path == "" {
		return fmt.Errorf("operators: file output operator missing Path")
	}
	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("operators: create parent directories: %w", err)
		}
	}
	file, err := os.OpenFile(f.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Err(err).Str("path", f.Path).Msg("failed to open output file")
		return err
	}
	f.file = file
	f.writer = bufio.NewWriter(file)
	return nil
}

func (f *FileOutputOperator) Write(record []byte) error {
	if _, err := f.writer.Write(record); err != nil {
		return err
	}
	return f.writer.WriteByte('\n')
}

func (f *FileOutputOperator) Teardown() error {
	if f.writer != nil {
		if err := f.writer.Flush(); err != nil {
			return err
		}
	}
	if f.file != nil {
		return f.file.Close()
	}
	return nil
}
