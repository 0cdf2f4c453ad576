package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// setPart stores a part, registering its name at the end of the package
// order if it is new.
func (d *Document) setPart(name string, content []byte) {
	if _, ok := d.parts[name]; !ok {
		d.partNames = append(d.partNames, name)
	}
	d.parts[name] = content
}

// removePart drops a part and its name from the package order.
func (d *Document) removePart(name string) {
	if _, ok := d.parts[name]; !ok {
		return
	}
	delete(d.parts, name)
	for i, n := range d.partNames {
		if n == name {
			d.partNames = append(d.partNames[:i], d.partNames[i+1:]...)
			break
		}
	}
}

// marshalPart serializes an XML part with the standard declaration.
func marshalPart(v any) ([]byte, error) {
	out, err := xml.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

// rewriteContentTypes re-marshals the [Content_Types].xml part from its
// parsed view. Content types are a closed schema, so a full round-trip is
// safe, unlike presentation.xml which is patched surgically.
func (d *Document) rewriteContentTypes() error {
	data, err := marshalPart(d.contentTypes)
	if err != nil {
		return fmt.Errorf("rewriting content types: %w", err)
	}
	d.setPart("[Content_Types].xml", data)
	return nil
}

// rewritePresRels re-marshals the presentation relationships part.
func (d *Document) rewritePresRels() error {
	data, err := marshalPart(d.presRels)
	if err != nil {
		return fmt.Errorf("rewriting presentation relationships: %w", err)
	}
	d.setPart("ppt/_rels/presentation.xml.rels", data)
	return nil
}

// Save writes the document as a PPTX stream. Parts the document never
// mutated are written back byte-for-byte in their original order.
func (d *Document) Save(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, name := range d.partNames {
		fw, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("creating %s: %w", name, err)
		}
		if _, err := fw.Write(d.parts[name]); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing archive: %w", err)
	}
	return nil
}

// Bytes serializes the document into memory.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
