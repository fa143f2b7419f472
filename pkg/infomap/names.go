package infomap

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	lcerr "github.com/ruliana/link-community/pkg/errors"
)

var quotedRE = regexp.MustCompile(`"([^"]+)"`)

// ReadNames reads one node name per line. Line i names node index i.
func ReadNames(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		names = append(names, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read names: %w", err)
	}
	return names, nil
}

// NameTree copies a .tree file from r to w, replacing the first quoted node
// index on each line with its name:
//
//	1:1 0.25 "3" 3   =>   1:1 0.25 "carol" 3
//
// Quoted text that is not an index is left alone. An index with no name is a
// lookup failure.
func NameTree(r io.Reader, w io.Writer, names []string) error {
	scanner := bufio.NewScanner(r)
	bw := bufio.NewWriter(w)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimRight(scanner.Text(), "\r")
		named, err := nameLine(line, names)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		if _, err := bw.WriteString(named + "\n"); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read tree: %w", err)
	}
	return bw.Flush()
}

func nameLine(line string, names []string) (string, error) {
	loc := quotedRE.FindStringSubmatchIndex(line)
	if loc == nil {
		return line, nil
	}
	idx, err := strconv.Atoi(line[loc[2]:loc[3]])
	if err != nil {
		return line, nil
	}
	if idx < 0 || idx >= len(names) {
		return "", lcerr.New(lcerr.ErrCodeLookupFailure, "no name for node %d (%d names)", idx, len(names))
	}
	return line[:loc[0]] + `"` + names[idx] + `"` + line[loc[1]:], nil
}
