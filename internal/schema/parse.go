package schema

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

const xsdNamespace = "http://www.w3.org/2001/XMLSchema"

// ErrMalformed reports a document that could not be parsed as a schema.
var ErrMalformed = errors.New("malformed schema document")

// Parse reads just enough of a schema document to establish its
// identity: target namespace, preferred prefix and sub-references.
// It scans tokens rather than unmarshalling the whole document, so a
// large schema body costs no more than its header and top-level
// directives.
func Parse(location string, r io.Reader) (*Schema, error) {
	dec := xml.NewDecoder(r)

	s := &Schema{
		Name:              NameFor(location),
		CanonicalLocation: location,
		Location:          location,
	}

	type binding struct {
		prefix, ns string
	}

	depth := 0
	sawRoot := false
	var xmlns []binding // root element declarations, document order

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, location, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 1 {
				if t.Name.Local != "schema" {
					return nil, fmt.Errorf("%w: %s: root element is <%s>, not <schema>", ErrMalformed, location, t.Name.Local)
				}
				sawRoot = true
				for _, a := range t.Attr {
					switch {
					case a.Name.Local == "targetNamespace":
						s.TargetNamespace = a.Value
					case a.Name.Space == "xmlns":
						xmlns = append(xmlns, binding{a.Name.Local, a.Value})
					}
				}
			}
			if depth == 2 && t.Name.Space == xsdNamespace {
				switch t.Name.Local {
				case "import", "include", "redefine":
					for _, a := range t.Attr {
						if a.Name.Local == "schemaLocation" && a.Value != "" {
							s.SubRefs = append(s.SubRefs, a.Value)
						}
					}
				}
			}
		case xml.EndElement:
			depth--
		}
	}

	if !sawRoot {
		return nil, fmt.Errorf("%w: %s: no root element", ErrMalformed, location)
	}

	// The preferred prefix is whichever one the document itself binds
	// to its target namespace.
	if s.TargetNamespace != "" {
		for _, b := range xmlns {
			if b.ns == s.TargetNamespace {
				s.Prefix = b.prefix
				break
			}
		}
	}

	return s, nil
}
