// Package envelope builds the SOAP request body for the upstream
// person-search service. Construction is pure string assembly: no I/O,
// no failure modes, byte-identical output for identical input.
package envelope

import (
	"bytes"
	"encoding/xml"
	"strings"

	"tlo-gateway/internal/search/models"
)

// Credentials are the upstream account credentials embedded in every
// envelope. They are process-wide configuration and must never be logged.
type Credentials struct {
	Username string
	Password string
}

// Fixed protocol constants. Not configurable per request.
const (
	glbPurpose     = "1"
	dppaPurpose    = "1"
	pageSize       = "25"
	startingRecord = "1"
)

// Build produces the SOAP envelope for one search. Every user-supplied
// or credential string is XML-escaped before interpolation, so arbitrary
// caller text becomes literal element content.
func Build(q models.SearchQuery, creds Credentials) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>`)
	b.WriteString(`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/" xmlns:tlo="http://tloxp.tlo.com/">`)
	b.WriteString(`<soap:Header><tlo:UserInfo>`)
	elem(&b, "tlo:Username", creds.Username)
	elem(&b, "tlo:Password", creds.Password)
	b.WriteString(`</tlo:UserInfo></soap:Header>`)
	b.WriteString(`<soap:Body><tlo:SearchPerson><tlo:SearchInput>`)
	elem(&b, "tlo:FirstName", q.FirstName)
	elem(&b, "tlo:LastName", q.LastName)
	elem(&b, "tlo:SSN", q.SSN)
	elem(&b, "tlo:GlbPurpose", glbPurpose)
	elem(&b, "tlo:DppaPurpose", dppaPurpose)
	elem(&b, "tlo:PageSize", pageSize)
	elem(&b, "tlo:StartingRecord", startingRecord)
	b.WriteString(`</tlo:SearchInput></tlo:SearchPerson></soap:Body>`)
	b.WriteString(`</soap:Envelope>`)
	return []byte(b.String())
}

func elem(b *strings.Builder, name, value string) {
	b.WriteString("<")
	b.WriteString(name)
	b.WriteString(">")
	b.WriteString(escape(value))
	b.WriteString("</")
	b.WriteString(name)
	b.WriteString(">")
}

// escape replaces the five reserved XML characters. xml.EscapeText on a
// bytes.Buffer cannot fail.
func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
