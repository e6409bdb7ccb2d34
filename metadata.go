// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package inspect

import (
	"bytes"
	"encoding/xml"
	"strings"

	"github.com/sassoftware/viya-pdf-inspect/filter"
	"github.com/sassoftware/viya-pdf-inspect/logger"
	"github.com/sassoftware/viya-pdf-inspect/object"
	"github.com/sassoftware/viya-pdf-inspect/textenc"
)

// Info and catalog keys read by Metadata.
const (
	keyTitle          = "Title"
	keyAuthor         = "Author"
	keySubject        = "Subject"
	keyKeywords       = "Keywords"
	keyCreator        = "Creator"
	keyProducer       = "Producer"
	keyCreationDate   = "CreationDate"
	keyModDate        = "ModDate"
	keyMetadata       = "Metadata"
	keyCollection     = "Collection"
	keyPages          = "Pages"
	keyCount          = "Count"
	keyLang           = "Lang"
	keyP              = "P"
	keyFontDescriptor = "FontDescriptor"
	keySubtype        = "Subtype"
)

// Metadata merges the Info dictionary and the XMP packet, XMP first, with
// structural facts about the file.
type Metadata struct {
	Title        string `json:"title,omitempty" msgpack:"title,omitempty"`
	Author       string `json:"author,omitempty" msgpack:"author,omitempty"`
	Subject      string `json:"subject,omitempty" msgpack:"subject,omitempty"`
	Keywords     string `json:"keywords,omitempty" msgpack:"keywords,omitempty"`
	Creator      string `json:"creator,omitempty" msgpack:"creator,omitempty"`
	Producer     string `json:"producer,omitempty" msgpack:"producer,omitempty"`
	CreationDate string `json:"creationDate,omitempty" msgpack:"creationDate,omitempty"`
	ModDate      string `json:"modDate,omitempty" msgpack:"modDate,omitempty"`

	PDFVersion              string `json:"pdf:PDFVersion,omitempty" msgpack:"pdfVersion,omitempty"`
	HasXMP                  bool   `json:"pdf:hasXMP" msgpack:"hasXMP"`
	HasCollection           bool   `json:"pdf:hasCollection" msgpack:"hasCollection"`
	Encrypted               bool   `json:"pdf:encrypted" msgpack:"encrypted"`
	NPages                  int    `json:"xmpTPg:NPages,omitempty" msgpack:"nPages,omitempty"`
	ContainsNonEmbeddedFont bool   `json:"pdf:containsNonEmbeddedFont" msgpack:"containsNonEmbeddedFont"`
	Language                string `json:"language,omitempty" msgpack:"language,omitempty"`

	AccessPermission AccessPermission `json:"access_permission" msgpack:"accessPermission"`
}

// AccessPermission is the Standard security handler's /P field
// (ISO 32000-1 §7.6.3.2, Table 22). A set bit grants the permission.
type AccessPermission struct {
	CanPrint                bool `json:"can_print" msgpack:"canPrint"`
	CanPrintFaithful        bool `json:"can_print_faithful" msgpack:"canPrintFaithful"`
	CanModify               bool `json:"can_modify" msgpack:"canModify"`
	ExtractContent          bool `json:"extract_content" msgpack:"extractContent"`
	ModifyAnnotations       bool `json:"modify_annotations" msgpack:"modifyAnnotations"`
	FillInForm              bool `json:"fill_in_form" msgpack:"fillInForm"`
	ExtractForAccessibility bool `json:"extract_for_accessibility" msgpack:"extractForAccessibility"`
	AssembleDocument        bool `json:"assemble_document" msgpack:"assembleDocument"`
}

var allPermissions = AccessPermission{
	CanPrint:                true,
	CanPrintFaithful:        true,
	CanModify:               true,
	ExtractContent:          true,
	ModifyAnnotations:       true,
	FillInForm:              true,
	ExtractForAccessibility: true,
	AssembleDocument:        true,
}

func permissions(p uint32) AccessPermission {
	var ap AccessPermission
	ap.CanPrint = p&(1<<2) != 0
	ap.CanModify = p&(1<<3) != 0
	ap.ExtractContent = p&(1<<4) != 0
	ap.ModifyAnnotations = p&(1<<5) != 0
	// revision 2 handlers fold form filling into bit 6
	ap.FillInForm = p&(1<<8) != 0 || ap.ModifyAnnotations
	ap.ExtractForAccessibility = p&(1<<9) != 0
	ap.AssembleDocument = p&(1<<10) != 0
	ap.CanPrintFaithful = p&(1<<11) != 0 || ap.CanPrint
	return ap
}

// Minimal XML models to pull common XMP fields in a namespace
type xmpPacket struct {
	XMLName xml.Name `xml:"xmpmeta"`
	RDF     rdfRDF   `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# RDF"`
}

type rdfRDF struct {
	Descriptions []rdfDescription `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# Description"`
}

type rdfDescription struct {
	Title       rdfList `xml:"http://purl.org/dc/elements/1.1/ title"`
	Description rdfList `xml:"http://purl.org/dc/elements/1.1/ description"`
	Creator     rdfList `xml:"http://purl.org/dc/elements/1.1/ creator"`

	PDFProducer string `xml:"http://ns.adobe.com/pdf/1.3/ Producer"`
	PDFKeywords string `xml:"http://ns.adobe.com/pdf/1.3/ Keywords"`

	XMPCreatorTool string `xml:"http://ns.adobe.com/xap/1.0/ CreatorTool"`
	XMPCreateDate  string `xml:"http://ns.adobe.com/xap/1.0/ CreateDate"`
	XMPModifyDate  string `xml:"http://ns.adobe.com/xap/1.0/ ModifyDate"`
}

// rdfList reads the items of an rdf:Alt, rdf:Seq or rdf:Bag container.
type rdfList struct {
	Alt []string `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# Alt>li"`
	Seq []string `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# Seq>li"`
	Bag []string `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# Bag>li"`
}

func (l rdfList) First() string {
	for _, items := range [][]string{l.Alt, l.Seq, l.Bag} {
		if len(items) > 0 {
			return strings.TrimSpace(items[0])
		}
	}
	return ""
}

type xmpFields struct {
	Title, Creator, Subject, Keywords, CreatorTool, Producer, CreateDate, ModifyDate string
}

// parseXMP decodes an XMP packet with encoding/xml.
func parseXMP(x []byte) (xmpFields, bool) {
	var pkt xmpPacket
	dec := xml.NewDecoder(bytes.NewReader(x))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity
	if err := dec.Decode(&pkt); err != nil {
		logger.Debug("xmp: not well-formed", "err", err)
		return xmpFields{}, false
	}

	var f xmpFields
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	for _, d := range pkt.RDF.Descriptions {
		set(&f.Title, d.Title.First())
		set(&f.Creator, d.Creator.First())
		set(&f.Subject, d.Description.First())
		set(&f.Keywords, d.PDFKeywords)
		set(&f.Producer, d.PDFProducer)
		set(&f.CreatorTool, d.XMPCreatorTool)
		set(&f.CreateDate, d.XMPCreateDate)
		set(&f.ModifyDate, d.XMPModifyDate)
	}
	return f, true
}

// parseXMPFallback searches for well-known tags in a packet encoding/xml
// rejected.
func parseXMPFallback(x []byte) xmpFields {
	s := string(x)
	get := func(tags ...string) string {
		for _, t := range tags {
			open, close := "<"+t+">", "</"+t+">"
			i := strings.Index(s, open)
			if i < 0 {
				continue
			}
			rest := s[i+len(open):]
			if j := strings.Index(rest, close); j >= 0 {
				return strings.TrimSpace(stripXMLTags(rest[:j]))
			}
		}
		return ""
	}
	return xmpFields{
		Title:       get("dc:title", "pdf:Title"),
		Creator:     get("dc:creator", "pdf:Author"),
		Subject:     get("dc:description", "pdf:Subject"),
		Keywords:    get("pdf:Keywords"),
		CreatorTool: get("xmp:CreatorTool"),
		Producer:    get("pdf:Producer"),
		CreateDate:  get("xmp:CreateDate"),
		ModifyDate:  get("xmp:ModifyDate"),
	}
}

// stripXMLTags removes simple XML tags from a string.
func stripXMLTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch r {
		case '<':
			inTag = true
		case '>':
			inTag = false
		default:
			if !inTag {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// prefer returns a if non-empty after trimming, otherwise b.
func prefer(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}

// headerVersion returns the version of the first %PDF-x.y comment in the
// leading kilobyte.
func headerVersion(buf []byte) string {
	head := buf[:min(len(buf), 1024)]
	i := bytes.Index(head, []byte("%PDF-"))
	if i < 0 {
		return ""
	}
	line := head[i+len("%PDF-"):]
	if j := bytes.IndexAny(line, "\r\n"); j >= 0 {
		line = line[:j]
	}
	return strings.TrimSpace(string(line))
}

// dict resolves v and returns it as a dictionary.
func (d *Document) dict(v object.Value) (*object.Dictionary, bool) {
	if v == nil {
		return nil, false
	}
	r, err := d.Resolve(v)
	if err != nil {
		return nil, false
	}
	dict, ok := r.(*object.Dictionary)
	return dict, ok
}

// entry resolves the value stored under key.
func (d *Document) entry(dict *object.Dictionary, key string) (object.Value, bool) {
	if dict == nil {
		return nil, false
	}
	v, ok := dict.Get(key)
	if !ok {
		return nil, false
	}
	r, err := d.Resolve(v)
	if err != nil {
		return nil, false
	}
	return r, true
}

// text decodes the string stored under key.
func (d *Document) text(dict *object.Dictionary, key string) string {
	v, ok := d.entry(dict, key)
	if !ok {
		return ""
	}
	s, ok := v.(object.String)
	if !ok {
		return ""
	}
	t, err := textenc.DecodeString(s)
	if err != nil {
		logger.Debug("metadata: undecodable string", "key", key, "err", err)
		return ""
	}
	return t
}

// stream returns the stream stored under key, which must be a reference.
func (d *Document) stream(dict *object.Dictionary, key string) (*object.Stream, bool) {
	if dict == nil {
		return nil, false
	}
	v, ok := dict.Get(key)
	if !ok {
		return nil, false
	}
	ref, ok := v.(object.Reference)
	if !ok {
		return nil, false
	}
	obj, ok := d.objects.Lookup(ref.ID)
	if !ok {
		return nil, false
	}
	return obj.Stream()
}

// catalog returns the document catalog named by the newest trailer's Root.
func (d *Document) catalog() *object.Dictionary {
	t := d.Trailer()
	if t == nil || t.Root == nil {
		return nil
	}
	c, _ := d.dict(*t.Root)
	return c
}

func (d *Document) info() *object.Dictionary {
	t := d.Trailer()
	if t == nil || t.Info == nil {
		return nil
	}
	i, _ := d.dict(*t.Info)
	return i
}

// xmp returns the decoded /Root /Metadata stream, nil when absent.
func (d *Document) xmp() ([]byte, error) {
	s, ok := d.stream(d.catalog(), keyMetadata)
	if !ok {
		return nil, nil
	}
	logger.Debug("found XMP Stream", true)
	return filter.NewChain(d.maxDecodedSize, d.objects).Decode(s.Dictionary, s.Data)
}

func (d *Document) encryption() (*object.Dictionary, bool) {
	t := d.Trailer()
	if t == nil || t.Encrypt == nil {
		return nil, false
	}
	return d.dict(t.Encrypt)
}

func (d *Document) accessPermissions() AccessPermission {
	enc, ok := d.encryption()
	if !ok {
		return allPermissions
	}
	v, ok := d.entry(enc, keyP)
	if !ok {
		return AccessPermission{}
	}
	i, ok := v.(object.Integer)
	if !ok {
		return AccessPermission{}
	}
	p, ok := i.Int64()
	if !ok {
		return AccessPermission{}
	}
	return permissions(uint32(p))
}

func (d *Document) pageCount() int {
	pages, ok := d.entry(d.catalog(), keyPages)
	if !ok {
		return 0
	}
	pd, ok := pages.(*object.Dictionary)
	if !ok {
		return 0
	}
	v, ok := d.entry(pd, keyCount)
	if !ok {
		return 0
	}
	i, ok := v.(object.Integer)
	if !ok {
		return 0
	}
	n, _ := i.Int()
	return n
}

// containsNonEmbeddedFont reports whether a parsed font other than Type3
// lacks a FontFile, FontFile2 or FontFile3 stream.
func (d *Document) containsNonEmbeddedFont() bool {
	for _, obj := range d.objects {
		font, ok := obj.Value.(*object.Dictionary)
		if !ok {
			continue
		}
		if typ, _, _ := font.Name(object.KeyType); typ.Key() != "Font" {
			continue
		}
		if sub, _, _ := font.Name(keySubtype); sub.Key() == "Type3" || sub.Key() == "Type0" {
			continue
		}
		desc, ok := d.entry(font, keyFontDescriptor)
		if !ok {
			return true
		}
		dd, ok := desc.(*object.Dictionary)
		if !ok {
			return true
		}
		embedded := false
		for _, k := range []string{"FontFile", "FontFile2", "FontFile3"} {
			if _, ok := d.stream(dd, k); ok {
				embedded = true
			}
		}
		if !embedded {
			return true
		}
	}
	return false
}

// Metadata returns unified metadata with XMP taking precedence over /Info.
func (d *Document) Metadata() (Metadata, error) {
	info := d.info()
	root := d.catalog()

	var out Metadata
	x, err := d.xmp()
	if err != nil {
		logger.Error("failed to decode XMP stream", "path", d.Path, "err", err)
		return out, err
	}
	var xf xmpFields
	if x != nil {
		out.HasXMP = true
		if got, ok := parseXMP(x); ok {
			xf = got
		} else {
			xf = parseXMPFallback(x)
		}
	}

	out.Title = prefer(xf.Title, d.text(info, keyTitle))
	out.Author = prefer(xf.Creator, d.text(info, keyAuthor))
	out.Subject = prefer(xf.Subject, d.text(info, keySubject))
	out.Keywords = prefer(xf.Keywords, d.text(info, keyKeywords))
	out.Creator = prefer(xf.CreatorTool, d.text(info, keyCreator))
	out.Producer = prefer(xf.Producer, d.text(info, keyProducer))
	out.CreationDate = prefer(xf.CreateDate, d.text(info, keyCreationDate))
	out.ModDate = prefer(xf.ModifyDate, d.text(info, keyModDate))

	out.PDFVersion = headerVersion(d.buf)
	if root != nil {
		out.HasCollection = root.Has(keyCollection)
		out.Language = d.text(root, keyLang)
	}
	_, out.Encrypted = d.encryption()
	out.NPages = d.pageCount()
	out.ContainsNonEmbeddedFont = d.containsNonEmbeddedFont()
	out.AccessPermission = d.accessPermissions()
	logger.Debug("metadata extracted", true)
	return out, nil
}
