package openlibrary

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/bookstore/internal/domain/book"
)

// decodeSearch reads a search.json payload. Unknown fields are skipped.
func decodeSearch(d *jx.Decoder) ([]book.Record, error) {
	var records []book.Record
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		if string(key) != "docs" {
			return d.Skip()
		}
		if d.Next() == jx.Null {
			return d.Null()
		}
		return d.Arr(func(d *jx.Decoder) error {
			r, err := decodeDoc(d)
			if err != nil {
				return err
			}
			records = append(records, r)
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode search")
	}
	return records, nil
}

func decodeDoc(d *jx.Decoder) (book.Record, error) {
	var r book.Record
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "key":
			r.Key, err = optStr(d)
		case "title":
			r.Title, err = optStr(d)
		case "author_name":
			r.AuthorNames, err = strs(d)
		case "first_publish_year":
			r.FirstPublishYear, err = optInt(d)
		case "isbn":
			r.ISBN, err = strs(d)
		case "cover_i":
			var id int
			id, err = optInt(d)
			r.CoverID = int64(id)
		case "subject":
			r.Subjects, err = strs(d)
		case "publisher":
			r.Publishers, err = strs(d)
		case "number_of_pages_median":
			r.PagesMedian, err = optInt(d)
		case "language":
			r.Languages, err = strs(d)
		case "ratings_average":
			r.RatingsAverage, err = optFloat(d)
		case "ratings_count":
			r.RatingsCount, err = optInt(d)
		case "first_sentence":
			r.FirstSentences, err = strs(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "field %q", key)
		}
		return nil
	})
	return r, err
}

// decodeWork reads a works/{id}.json payload into the search record shape.
func decodeWork(d *jx.Decoder) (*book.Record, error) {
	r := new(book.Record)
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "key":
			r.Key, err = optStr(d)
		case "title":
			r.Title, err = optStr(d)
		case "authors":
			r.AuthorNames, err = authorNames(d)
		case "first_publish_date":
			var s string
			s, err = optStr(d)
			r.FirstPublishYear = parseYear(s)
		case "covers":
			var covers []int64
			covers, err = ints(d)
			if len(covers) > 0 {
				r.CoverID = covers[0]
			}
		case "subjects":
			r.Subjects, err = strs(d)
		case "description":
			var s string
			s, err = textValue(d)
			if s != "" {
				r.FirstSentences = []string{s}
			}
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "field %q", key)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode work")
	}
	return r, nil
}

// authorNames reads [{"author": {"key": .., "name": ..}}]. Entries without a
// name are dropped.
func authorNames(d *jx.Decoder) ([]string, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	var names []string
	err := d.Arr(func(d *jx.Decoder) error {
		if d.Next() != jx.Object {
			return d.Skip()
		}
		return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
			if string(key) != "author" || d.Next() != jx.Object {
				return d.Skip()
			}
			return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
				if string(key) != "name" {
					return d.Skip()
				}
				name, err := optStr(d)
				if name != "" {
					names = append(names, name)
				}
				return err
			})
		})
	})
	return names, err
}

// textValue reads either a plain string or a {"type": .., "value": ..} object.
func textValue(d *jx.Decoder) (string, error) {
	switch d.Next() {
	case jx.String:
		return d.Str()
	case jx.Object:
		var v string
		err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
			if string(key) != "value" {
				return d.Skip()
			}
			var err error
			v, err = optStr(d)
			return err
		})
		return v, err
	default:
		return "", d.Skip()
	}
}

// parseYear returns the first four-digit run in s, or zero.
func parseYear(s string) int {
	run, year := 0, 0
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			if run == 4 {
				return year
			}
			run, year = 0, 0
			continue
		}
		run++
		year = year*10 + int(ch-'0')
	}
	if run == 4 {
		return year
	}
	return 0
}

func optStr(d *jx.Decoder) (string, error) {
	if d.Next() != jx.String {
		return "", d.Skip()
	}
	return d.Str()
}

func optInt(d *jx.Decoder) (int, error) {
	if d.Next() != jx.Number {
		return 0, d.Skip()
	}
	f, err := d.Float64()
	return int(f), err
}

func optFloat(d *jx.Decoder) (float64, error) {
	if d.Next() != jx.Number {
		return 0, d.Skip()
	}
	return d.Float64()
}

func strs(d *jx.Decoder) ([]string, error) {
	if d.Next() != jx.Array {
		return nil, d.Skip()
	}
	var out []string
	err := d.Arr(func(d *jx.Decoder) error {
		s, err := optStr(d)
		if err == nil && s != "" {
			out = append(out, s)
		}
		return err
	})
	return out, err
}

func ints(d *jx.Decoder) ([]int64, error) {
	if d.Next() != jx.Array {
		return nil, d.Skip()
	}
	var out []int64
	err := d.Arr(func(d *jx.Decoder) error {
		v, err := optInt(d)
		if err == nil {
			out = append(out, int64(v))
		}
		return err
	})
	return out, err
}
