package cachestore

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/skillcrawl/skillcrawl/pkg/types"
)

// Reserved top-level keys. Every other top-level key is a semester label.
const (
	keyUniversityName    = "university_name"
	keyUniversityCountry = "university_country"
)

// EncodeIndex serializes an index to the on-disk document format:
// reserved name/country keys first, then one object per semester keyed by
// label, each mapping lesson title to lesson record. Key order follows
// discovery order, which plain map marshaling would destroy.
func EncodeIndex(u *types.UniversityIndex) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	writeKey := func(key string) {
		b, _ := json.Marshal(key)
		buf.Write(b)
		buf.WriteByte(':')
	}

	writeKey(keyUniversityName)
	nameJSON, err := json.Marshal(u.Name)
	if err != nil {
		return nil, fmt.Errorf("encode university name: %w", err)
	}
	buf.Write(nameJSON)

	buf.WriteByte(',')
	writeKey(keyUniversityCountry)
	countryJSON, err := json.Marshal(u.Country)
	if err != nil {
		return nil, fmt.Errorf("encode university country: %w", err)
	}
	buf.Write(countryJSON)

	for _, sem := range u.Semesters {
		buf.WriteByte(',')
		writeKey(sem.Label)
		buf.WriteByte('{')
		for i, rec := range sem.Lessons {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeKey(rec.Title)
			recJSON, err := json.Marshal(rec)
			if err != nil {
				return nil, fmt.Errorf("encode lesson %q: %w", rec.Title, err)
			}
			buf.Write(recJSON)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "    "); err != nil {
		return nil, fmt.Errorf("indent document: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// DecodeIndex parses the document format back into an index, preserving
// semester and lesson order as they appear in the document.
func DecodeIndex(data []byte) (*types.UniversityIndex, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("document root: %w", err)
	}

	u := &types.UniversityIndex{}
	for dec.More() {
		key, err := stringToken(dec)
		if err != nil {
			return nil, fmt.Errorf("document key: %w", err)
		}

		switch key {
		case keyUniversityName:
			if err := dec.Decode(&u.Name); err != nil {
				return nil, fmt.Errorf("decode %s: %w", key, err)
			}
		case keyUniversityCountry:
			if err := dec.Decode(&u.Country); err != nil {
				return nil, fmt.Errorf("decode %s: %w", key, err)
			}
		default:
			sem, err := decodeSemester(dec, key)
			if err != nil {
				return nil, err
			}
			u.Semesters = append(u.Semesters, sem)
		}
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, fmt.Errorf("document close: %w", err)
	}
	return u, nil
}

func decodeSemester(dec *json.Decoder, label string) (*types.Semester, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("semester %q: %w", label, err)
	}

	sem := &types.Semester{Label: label}
	for dec.More() {
		title, err := stringToken(dec)
		if err != nil {
			return nil, fmt.Errorf("semester %q lesson key: %w", label, err)
		}
		rec := &types.LessonRecord{}
		if err := dec.Decode(rec); err != nil {
			return nil, fmt.Errorf("semester %q lesson %q: %w", label, title, err)
		}
		rec.Title = title
		rec.Provenance = types.ProvenanceCached
		sem.Put(rec)
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, fmt.Errorf("semester %q close: %w", label, err)
	}
	return sem, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func stringToken(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %v", tok)
	}
	return s, nil
}
