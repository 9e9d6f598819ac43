package sheetwriter

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"github.com/ginjaninja78/sheetops/internal/types"
)

// XML STRUCTURE:
//
//	<?xml version="1.0" encoding="UTF-8"?>
//	<results>
//	  <row n="1">
//	    <cell name="id" type="string">1</cell>
//	    <cell name="price" type="number" differs="true">10.5</cell>
//	  </row>
//	</results>
//
// Absent cells are not written and an empty value gives <cell ...></cell>.
// Row numbering starts at 1.

// XMLOptions contains options for XML output.
type XMLOptions struct {
	// Indent is the string used for indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	// RootElement is the name of the document element.
	// Default: "results"
	RootElement string

	// RowIndexAttribute is the attribute name for the row index.
	// Default: "n"
	RowIndexAttribute string
}

// DefaultXMLOptions returns the default XML options.
func DefaultXMLOptions() XMLOptions {
	return XMLOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
		RootElement:           "results",
		RowIndexAttribute:     "n",
	}
}

// XMLElement is one element of the output document.
type XMLElement struct {
	XMLName    xml.Name
	Attributes []xml.Attr
	Value      string
	Children   []XMLElement
}

// WriteXML writes table as an XML document with the default options.
func WriteXML(w io.Writer, table types.Table, flags Flagger) error {
	return WriteXMLWithOptions(w, table, flags, DefaultXMLOptions())
}

// WriteXMLWithOptions writes table as an XML document. Cells flagged as
// differing carry differs="true".
func WriteXMLWithOptions(w io.Writer, table types.Table, flags Flagger, options XMLOptions) error {
	bw := bufio.NewWriter(w)
	if options.IncludeXMLDeclaration {
		bw.WriteString(xml.Header)
	}

	enc := xml.NewEncoder(bw)
	enc.Indent("", options.Indent)
	if err := encodeElement(enc, buildDocument(table, flags, options)); err != nil {
		return fmt.Errorf("failed to encode xml: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("failed to write xml: %w", err)
	}
	bw.WriteString("\n")
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write xml: %w", err)
	}
	return nil
}

// buildDocument creates the element tree for table.
func buildDocument(table types.Table, flags Flagger, options XMLOptions) XMLElement {
	root := XMLElement{
		XMLName:  xml.Name{Local: options.RootElement},
		Children: make([]XMLElement, 0, len(table.Rows)),
	}

	for i, row := range table.Rows {
		rowElement := XMLElement{
			XMLName: xml.Name{Local: "row"},
			Attributes: []xml.Attr{
				{Name: xml.Name{Local: options.RowIndexAttribute}, Value: strconv.Itoa(i + 1)},
			},
		}

		for _, column := range row.Columns() {
			v := row.Value(column)
			cell := XMLElement{
				XMLName: xml.Name{Local: "cell"},
				Attributes: []xml.Attr{
					{Name: xml.Name{Local: "name"}, Value: column},
					{Name: xml.Name{Local: "type"}, Value: v.Kind().String()},
				},
				Value: v.String(),
			}
			if flags != nil && flags.Flagged(i, column) {
				cell.Attributes = append(cell.Attributes, xml.Attr{Name: xml.Name{Local: "differs"}, Value: "true"})
			}
			rowElement.Children = append(rowElement.Children, cell)
		}

		root.Children = append(root.Children, rowElement)
	}

	return root
}

// encodeElement emits element and its children as tokens. The encoder
// escapes text and attributes and replaces characters XML cannot hold.
func encodeElement(enc *xml.Encoder, element XMLElement) error {
	start := xml.StartElement{Name: element.XMLName, Attr: element.Attributes}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if element.Value != "" {
		if err := enc.EncodeToken(xml.CharData(element.Value)); err != nil {
			return err
		}
	}
	for _, child := range element.Children {
		if err := encodeElement(enc, child); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}
