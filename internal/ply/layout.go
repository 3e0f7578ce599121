package ply

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

const endHeader = "end_header"

var typeSizes = map[string]int{
	"char": 1, "int8": 1, "uchar": 1, "uint8": 1,
	"short": 2, "int16": 2, "ushort": 2, "uint16": 2,
	"int": 4, "int32": 4, "uint": 4, "uint32": 4,
	"float": 4, "float32": 4, "double": 8, "float64": 8,
}

type declaredProperty struct {
	list bool
	size int // bytes of the scalar, or of the count of a list
}

type declaredElement struct {
	name       string
	count      int
	properties []declaredProperty
}

// Checks the records declared by the header against the content before any of them is decoded.
// Counts larger than the content, negative list lengths and truncated ascii records are rejected.
func checkLayout(content []byte) error {
	if !bytes.HasPrefix(content, []byte("ply")) {
		return fmt.Errorf("missing ply magic number")
	}
	end := bytes.Index(content, []byte(endHeader))
	if end < 0 {
		return fmt.Errorf("missing %s", endHeader)
	}
	body := content[end+len(endHeader):]
	body = bytes.TrimPrefix(bytes.TrimPrefix(body, []byte("\r")), []byte("\n"))

	format := ""
	var elements []declaredElement
	for _, line := range strings.Split(string(content[:end]), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "format":
			if len(fields) < 2 {
				return fmt.Errorf("malformed format line %q", line)
			}
			format = fields[1]
		case "element":
			if len(fields) != 3 {
				return fmt.Errorf("malformed element line %q", line)
			}
			count, err := strconv.Atoi(fields[2])
			if err != nil || count < 0 || count > len(body) {
				return fmt.Errorf("element %s: invalid count %q for %d bytes of data", fields[1], fields[2], len(body))
			}
			elements = append(elements, declaredElement{name: fields[1], count: count})
		case "property":
			if len(elements) == 0 {
				return fmt.Errorf("property declared outside of an element: %q", line)
			}
			prop, err := parseDeclaredProperty(fields)
			if err != nil {
				return err
			}
			last := &elements[len(elements)-1]
			last.properties = append(last.properties, prop)
		}
	}

	switch format {
	case "":
		return fmt.Errorf("missing format line")
	case "ascii":
		return checkAsciiRecords(body, elements)
	}
	minSize := 0
	for _, el := range elements {
		record := 0
		for _, p := range el.properties {
			record += p.size
		}
		minSize += el.count * record
	}
	if len(body) < minSize {
		return fmt.Errorf("header declares at least %d bytes of records, found %d", minSize, len(body))
	}
	return nil
}

func parseDeclaredProperty(fields []string) (declaredProperty, error) {
	if len(fields) == 5 && fields[1] == "list" {
		size, ok := typeSizes[fields[2]]
		if !ok || typeSizes[fields[3]] == 0 {
			return declaredProperty{}, fmt.Errorf("unknown list types %s %s", fields[2], fields[3])
		}
		return declaredProperty{list: true, size: size}, nil
	}
	if len(fields) != 3 {
		return declaredProperty{}, fmt.Errorf("malformed property line %q", strings.Join(fields, " "))
	}
	size, ok := typeSizes[fields[1]]
	if !ok {
		return declaredProperty{}, fmt.Errorf("unknown property type %s", fields[1])
	}
	return declaredProperty{size: size}, nil
}

// Every ascii record sits on its own line, lists prefixed by a non negative length
func checkAsciiRecords(body []byte, elements []declaredElement) error {
	lines := strings.Split(string(body), "\n")
	next := 0
	nextRecord := func() []string {
		for next < len(lines) {
			fields := strings.Fields(lines[next])
			next++
			if len(fields) > 0 {
				return fields
			}
		}
		return nil
	}

	for _, el := range elements {
		for i := 0; i < el.count; i++ {
			fields := nextRecord()
			if fields == nil {
				return fmt.Errorf("element %s: expected %d records, found %d", el.name, el.count, i)
			}
			used := 0
			for _, p := range el.properties {
				if used >= len(fields) {
					return fmt.Errorf("element %s record %d: too few values", el.name, i)
				}
				if !p.list {
					used++
					continue
				}
				n, err := strconv.Atoi(fields[used])
				if err != nil || n < 0 || used+1+n > len(fields) {
					return fmt.Errorf("element %s record %d: invalid list length %q", el.name, i, fields[used])
				}
				used += 1 + n
			}
		}
	}
	return nil
}
