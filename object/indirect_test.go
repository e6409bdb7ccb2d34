// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package object

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sassoftware/viya-pdf-inspect/parse"
)

func TestParseStream(t *testing.T) {
	tests := []struct {
		name string
		in   string
		data string
	}{
		{"lf", "<</Length 5>>\nstream\nhello\nendstream", "hello"},
		{"crlf", "<</Length 5>>\r\nstream\r\nhello\r\nendstream", "hello"},
		{"no eol before endstream", "<</Length 5>> stream\nhelloendstream", "hello"},
		{"empty", "<</Length 0>>\nstream\n\nendstream", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := []byte(tt.in)
			s, err := ParseStream(buf, 0, nil)
			require.NoError(t, err)
			assert.Equal(t, []byte(tt.data), s.Data)
			assert.Equal(t, len(buf), s.Span().End)
		})
	}
}

func TestParseStreamErrors(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		recoverable bool
		code        parse.Code
	}{
		{"not a stream", "<</A 1>> endobj", true, parse.NotFound},
		{"missing length", "<<>>\nstream\nendstream", false, parse.MissingKey},
		{"negative length", "<</Length -1>>\nstream\nendstream", false, parse.WrongObjectType},
		{"length too short", "<</Length 3>>\nstream\nhello\nendstream", false, parse.MissingClosing},
		{"length too long", "<</Length 10>>\nstream\n0123456\nendstream", false, parse.MissingClosing},
		{"length beyond buffer", "<</Length 99>>\nstream\nabc", false, parse.MissingData},
		{"dangling reference", "<</Length 8 0 R>>\nstream\nabc\nendstream", false, parse.Unresolved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStream([]byte(tt.in), 0, nil)
			require.Error(t, err)
			assert.Equal(t, tt.recoverable, parse.IsRecoverable(err))
			assert.Equal(t, tt.code, codeOf(t, err))
		})
	}
}

func TestParseStreamLengthReference(t *testing.T) {
	buf := []byte("<</Length 8 0 R>>\nstream\nabc\nendstream")
	objects := Objects{
		{Number: 8}: NewIndirectObject(ID{Number: 8}, NewInteger(3, parse.Span{}), parse.Span{}),
	}
	s, err := ParseStream(buf, 0, objects)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), s.Data)

	_, err = ParseStream(buf, 0, Objects{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingObject)
}

func TestParseIndirectObject(t *testing.T) {
	buf := []byte("\n 3 0 obj\n<</Type/Catalog/Pages 2 0 R>>\nendobj\n")
	obj, err := ParseIndirectObject(buf, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, ID{Number: 3}, obj.ID)
	assert.Equal(t, len(buf)-1, obj.Span().End)
	d, ok := obj.Value.(*Dictionary)
	require.True(t, ok)
	assert.True(t, d.Has("Pages"))

	buf = []byte("4 1 obj <</Length 2>>\nstream\nab\nendstream endobj")
	obj, err = ParseIndirectObject(buf, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, ID{Number: 4, Generation: 1}, obj.ID)
	s, ok := obj.Stream()
	require.True(t, ok)
	assert.Equal(t, []byte("ab"), s.Data)

	obj, err = ParseIndirectObject([]byte("5 0 obj 42 endobj"), 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "42", obj.Value.String())
}

func TestParseIndirectObjectErrors(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		recoverable bool
	}{
		{"reference", "1 0 R", true},
		{"garbage", "xref\n0 1", true},
		{"missing endobj", "1 0 obj 42", false},
		{"bad body", "1 0 obj } endobj", false},
		{"stream length mismatch", "1 0 obj <</Length 1>>\nstream\nabc\nendstream endobj", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseIndirectObject([]byte(tt.in), 0, nil)
			require.Error(t, err)
			assert.Equal(t, tt.recoverable, parse.IsRecoverable(err))
		})
	}
}

func TestResolve(t *testing.T) {
	span := parse.Span{}
	objects := Objects{
		{Number: 1}: NewIndirectObject(ID{Number: 1}, NewReference(ID{Number: 2}, span), span),
		{Number: 2}: NewIndirectObject(ID{Number: 2}, NewInteger(7, span), span),
		{Number: 3}: NewIndirectObject(ID{Number: 3}, NewReference(ID{Number: 4}, span), span),
		{Number: 4}: NewIndirectObject(ID{Number: 4}, NewReference(ID{Number: 3}, span), span),
		{Number: 5}: NewIndirectObject(ID{Number: 5}, NewStream(NewDictionary(span), nil, span), span),
	}

	v, err := Resolve(NewReference(ID{Number: 1}, span), objects)
	require.NoError(t, err)
	assert.Equal(t, "7", v.String())

	_, err = Resolve(NewReference(ID{Number: 3}, span), objects)
	assert.True(t, errors.Is(err, ErrCyclicReference))

	_, err = Resolve(NewReference(ID{Number: 5}, span), objects)
	assert.True(t, errors.Is(err, ErrReferenceToStream))

	_, err = Resolve(NewReference(ID{Number: 9}, span), objects)
	assert.True(t, errors.Is(err, ErrMissingObject))

	v, err = Resolve(NewBoolean(true, span), nil)
	require.NoError(t, err)
	assert.Equal(t, "true", v.String())

	assert.Equal(t, []ID{{Number: 1}, {Number: 2}, {Number: 3}, {Number: 4}, {Number: 5}}, objects.IDs())
}
