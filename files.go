/*
 * files.go, part of moldynplot.
 *
 * Copyright 2016 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package moldynplot

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/natefinch/atomic"
)

//Delimiter that splits fields on runs of blanks.
const Whitespace = "whitespace"

//ReadOptions contains the options for reading text tables.
type ReadOptions struct {
	delimiter string
	comment   string
	indexCol  int
}

//DefaultReadOptions returns options for comma-separated files with a
//header line, '#' comments, and the index in the first column.
func DefaultReadOptions() *ReadOptions {
	O := new(ReadOptions)
	O.delimiter = ","
	O.comment = "#"
	return O
}

//Returns the field delimiter, and sets it to a new value, if given.
//Whitespace, or the regular expression `\s+`, split the fields on runs of blanks.
func (O *ReadOptions) Delimiter(d ...string) string {
	if len(d) > 0 && d[0] != "" {
		O.delimiter = d[0]
		if O.delimiter == `\s+` {
			O.delimiter = Whitespace
		}
	}
	return O.delimiter
}

//Returns the prefix of comment lines, and sets it to a new value, if given.
//An empty string disables comments.
func (O *ReadOptions) Comment(c ...string) string {
	if len(c) > 0 {
		O.comment = c[0]
	}
	return O.comment
}

//Returns the position of the index column, and sets it to a new value,
//if a non-negative one is given.
func (O *ReadOptions) IndexCol(i ...int) int {
	if len(i) > 0 && i[0] >= 0 {
		O.indexCol = i[0]
	}
	return O.indexCol
}

//Strings taken as missing values.
var naValues = map[string]bool{
	"":     true,
	"nan":  true,
	"NaN":  true,
	"NAN":  true,
	"NA":   true,
	"N/A":  true,
	"null": true,
}

func parseCell(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if naValues[s] {
		return math.NaN(), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func readRecords(r io.Reader, O *ReadOptions) ([][]string, error) {
	if O.delimiter == Whitespace {
		records := make([][]string, 0, 128)
		s := bufio.NewScanner(r)
		s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		for s.Scan() {
			line := strings.TrimSpace(s.Text())
			if line == "" || (O.comment != "" && strings.HasPrefix(line, O.comment)) {
				continue
			}
			records = append(records, strings.Fields(line))
		}
		return records, s.Err()
	}
	delim, size := utf8.DecodeRuneInString(O.delimiter)
	if size != len(O.delimiter) {
		return nil, NewError(InvalidArgumentError, "readRecords", "delimiter %q must be a single character or %q", O.delimiter, Whitespace)
	}
	c := csv.NewReader(r)
	c.Comma = delim
	c.TrimLeadingSpace = true
	c.FieldsPerRecord = 0
	if O.comment != "" {
		cm, size := utf8.DecodeRuneInString(O.comment)
		if size != len(O.comment) {
			return nil, NewError(InvalidArgumentError, "readRecords", "comment prefix %q must be a single character", O.comment)
		}
		c.Comment = cm
	}
	return c.ReadAll()
}

//TableRead reads a text table from r. The first non-comment line is the header.
//The index column becomes a numeric index if all its entries are numbers,
//and a labeled index otherwise. Columns where every entry is a number or a
//missing value are float columns, the others are text columns.
func TableRead(r io.Reader, O *ReadOptions) (*Table, error) {
	if O == nil {
		O = DefaultReadOptions()
	}
	records, err := readRecords(r, O)
	if err != nil {
		return nil, WrapError(InvalidArgumentError, "TableRead", err, "malformed table")
	}
	if len(records) == 0 {
		return nil, NewError(InvalidArgumentError, "TableRead", "empty table")
	}
	header := records[0]
	data := records[1:]
	if O.indexCol >= len(header) {
		return nil, NewError(InvalidArgumentError, "TableRead", "index column %d, but only %d columns", O.indexCol, len(header))
	}
	for i, rec := range data {
		if len(rec) != len(header) {
			return nil, NewError(InvalidArgumentError, "TableRead", "line %d has %d fields, header has %d", i+2, len(rec), len(header))
		}
	}
	indexName := strings.TrimSpace(header[O.indexCol])
	labels := make([]string, len(data))
	values := make([]float64, len(data))
	numeric := true
	for i, rec := range data {
		labels[i] = strings.TrimSpace(rec[O.indexCol])
		v, ok := parseCell(labels[i])
		if !ok || math.IsNaN(v) {
			numeric = false
		}
		values[i] = v
	}
	var T *Table
	if numeric {
		T, err = NewTable(indexName, values)
	} else {
		T, err = NewLabeledTable(indexName, labels)
	}
	if err != nil {
		return nil, ErrDecorate(err, "TableRead")
	}
	for j, name := range header {
		if j == O.indexCol {
			continue
		}
		name = strings.TrimSpace(name)
		col := make([]float64, len(data))
		isfloat := true
		for i, rec := range data {
			v, ok := parseCell(rec[j])
			if !ok {
				isfloat = false
				break
			}
			col[i] = v
		}
		if isfloat {
			err = T.AddCol(name, col)
		} else {
			text := make([]string, len(data))
			for i, rec := range data {
				text[i] = strings.TrimSpace(rec[j])
			}
			err = T.AddText(name, text)
		}
		if err != nil {
			return nil, ErrDecorate(err, "TableRead")
		}
	}
	return T, nil
}

//the compression is chosen from the extension of the file name.
func decompressor(name string, r io.Reader) (io.ReadCloser, error) {
	switch {
	case strings.HasSuffix(name, ".zst"):
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return d.IOReadCloser(), nil
	case strings.HasSuffix(name, ".gz"):
		return gzip.NewReader(r)
	case strings.HasSuffix(name, ".zz"), strings.HasSuffix(name, ".flate"):
		return flate.NewReader(r), nil
	}
	return io.NopCloser(r), nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func compressor(name string, w io.Writer) (io.WriteCloser, error) {
	switch {
	case strings.HasSuffix(name, ".zst"):
		return zstd.NewWriter(w)
	case strings.HasSuffix(name, ".gz"):
		return gzip.NewWriter(w), nil
	case strings.HasSuffix(name, ".zz"), strings.HasSuffix(name, ".flate"):
		return flate.NewWriter(w, flate.DefaultCompression)
	}
	return nopWriteCloser{w}, nil
}

//TableFileRead reads the table in the file name, which may be compressed with
//zstd (.zst), gzip (.gz) or flate (.zz, .flate). A missing file gives a
//SourceNotFoundError.
func TableFileRead(name string, O *ReadOptions) (*Table, error) {
	f, err := os.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewError(SourceNotFoundError, "TableFileRead", "table file does not exist").WithFile(name)
		}
		return nil, WrapError(SourceNotFoundError, "TableFileRead", err, "unable to open").WithFile(name)
	}
	defer f.Close()
	r, err := decompressor(name, bufio.NewReader(f))
	if err != nil {
		return nil, WrapError(InvalidArgumentError, "TableFileRead", err, "unable to decompress").WithFile(name)
	}
	defer r.Close()
	T, err := TableRead(r, O)
	if err != nil {
		var E *Error
		if errors.As(err, &E) && E.FileName() == "" {
			E.WithFile(name)
		}
		return nil, ErrDecorate(err, "TableFileRead")
	}
	return T, nil
}

//TableWrite writes T to w as comma-separated values, with the index in the first column.
func TableWrite(w io.Writer, T *Table) error {
	c := csv.NewWriter(w)
	header := append([]string{T.IndexName()}, T.Columns()...)
	if err := c.Write(header); err != nil {
		return err
	}
	rec := make([]string, len(header))
	for i, k := range T.Keys() {
		rec[0] = k
		for j, n := range T.names {
			if f, ok := T.floats[n]; ok {
				rec[j+1] = strconv.FormatFloat(f[i], 'g', -1, 64)
			} else {
				rec[j+1] = T.texts[n][i]
			}
		}
		if err := c.Write(rec); err != nil {
			return err
		}
	}
	c.Flush()
	return c.Error()
}

//TableFileWrite writes T to the file name, compressed according to its extension
//as in TableFileRead. The file is replaced atomically, so readers never see
//a partially written table.
func TableFileWrite(name string, T *Table) error {
	var buf bytes.Buffer
	w, err := compressor(name, &buf)
	if err != nil {
		return WrapError(InvalidArgumentError, "TableFileWrite", err, "unable to compress").WithFile(name)
	}
	if err = TableWrite(w, T); err != nil {
		w.Close()
		return WrapError(InvalidArgumentError, "TableFileWrite", err, "unable to write table").WithFile(name)
	}
	if err = w.Close(); err != nil {
		return WrapError(InvalidArgumentError, "TableFileWrite", err, "unable to compress").WithFile(name)
	}
	return atomic.WriteFile(name, &buf)
}
