package seed

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Record is one row of the registration export.
type Record struct {
	ID             string
	Name           string
	Email          string
	PhoneNumber    string
	WantsToBuild   string
	Profile        string
	Website        string
	LinkedInHandle string
	GithubHandle   string
	XHandle        string
	Organization   string
	HasBuilt       string
}

const minRecordIDLength = 11

var recordID = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ParseCSV reads the registration export. The header line is skipped. A line
// whose first field is an alphanumeric id of at least 11 characters starts a
// record; any other non-blank line is a wrapped continuation of the previous
// record's has_built text.
func ParseCSV(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		records []Record
		current *Record
		header  = true
	)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if header {
			header = false
			continue
		}
		if line == "" {
			continue
		}

		first, _, hasComma := strings.Cut(line, ",")
		if hasComma && len(first) >= minRecordIDLength && recordID.MatchString(first) {
			if current != nil {
				records = append(records, *current)
			}
			rec, err := parseRecord(line)
			if err != nil {
				return nil, err
			}
			current = &rec
			continue
		}

		if current != nil {
			current.HasBuilt += " " + line
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if current != nil {
		records = append(records, *current)
	}
	return records, nil
}

func parseRecord(line string) (Record, error) {
	reader := csv.NewReader(strings.NewReader(line))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	fields, err := reader.Read()
	if err != nil {
		return Record{}, fmt.Errorf("parse csv line: %w", err)
	}

	field := func(i int) string {
		if i < len(fields) {
			return strings.TrimSpace(fields[i])
		}
		return ""
	}

	return Record{
		ID:             field(0),
		Name:           field(1),
		Email:          field(2),
		PhoneNumber:    field(3),
		WantsToBuild:   field(4),
		Profile:        field(5),
		Website:        field(6),
		LinkedInHandle: field(7),
		GithubHandle:   field(8),
		XHandle:        field(9),
		Organization:   field(10),
		HasBuilt:       field(11),
	}, nil
}
