package index

import (
	"encoding/json"
	bolt "go.etcd.io/bbolt"
	domainerr "ruesite/internal/domain/errors"
	"sort"
	"strings"
	"time"
)

var ErrNotFound = domainerr.ErrNotFound

var lastBuildKey = []byte("last")

type BuildRecord struct {
	Time        time.Time `json:"time"`
	ContentHash string    `json:"content_hash"`
	Written     int       `json:"written"`
	Skipped     int       `json:"skipped"`
	Removed     int       `json:"removed"`
}

func (s *Store) OutputHash(outPath string) (string, error) {
	outPath = strings.TrimSpace(outPath)
	if outPath == "" {
		return "", ErrNotFound
	}
	var hash string
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bOutputs).Get([]byte(outPath))
		if v == nil {
			return ErrNotFound
		}
		hash = string(v)
		return nil
	})
	return hash, err
}

func (s *Store) PutOutputHash(outPath, hash string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bOutputs).Put([]byte(outPath), []byte(hash))
	})
}

// Outputs lists every recorded output path in key order.
func (s *Store) Outputs() ([]string, error) {
	var out []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bOutputs).ForEach(func(k, _ []byte) error {
			out = append(out, string(k))
			return nil
		})
	})
	return out, err
}

// Prune forgets every output not in keep and returns the forgotten paths.
func (s *Store) Prune(keep map[string]struct{}) ([]string, error) {
	var removed []string
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bOutputs)
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if _, ok := keep[string(k)]; ok {
				continue
			}
			removed = append(removed, string(k))
		}
		for _, k := range removed {
			if err := b.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
	sort.Strings(removed)
	return removed, err
}

func (s *Store) RecordBuild(rec BuildRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bBuilds).Put(lastBuildKey, data)
	})
}

func (s *Store) LastBuild() (BuildRecord, error) {
	var rec BuildRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bBuilds).Get(lastBuildKey)
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &rec)
	})
	return rec, err
}
