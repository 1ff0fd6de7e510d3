// Package store is an on-disk cache of recovered results, keyed by record
// name, kept in a bbolt database.
package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/xsrecover/xsrecover"
	"github.com/xsrecover/xsrecover/recovery"
	"github.com/xsrecover/xsrecover/xorshift"
)

var resultsBucket = []byte("results")

const (
	encodingVersion = 2

	headerSize    = 1 + 1 + recovery.DigestSize + 4
	candidateSize = 8 + 8 + 4 + 4
)

// DB is a bbolt database of results. It satisfies recovery.Cache.
type DB struct {
	*bbolt.DB
}

// Open opens or creates the database at path.
func Open(path string) (*DB, error) {
	bdb, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = bdb.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(resultsBucket)
		return err
	})
	if err != nil {
		bdb.Close()
		return nil, fmt.Errorf("error creating results bucket: %w", err)
	}

	log.Debugf("Opened result database %s", path)

	return &DB{DB: bdb}, nil
}

// Put stores the entry under name, replacing any earlier one.
func (db *DB) Put(name string, e recovery.Entry) error {
	if len(name) == 0 {
		return errors.New("cannot store a result with an empty name")
	}

	v := encodeEntry(e)
	return db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(resultsBucket).Put([]byte(name), v)
	})
}

// Get returns the entry stored under name. The second return value is false
// if there is none.
func (db *DB) Get(name string) (recovery.Entry, bool, error) {
	var e recovery.Entry
	var found bool

	err := db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(resultsBucket).Get([]byte(name))
		if v == nil {
			return nil
		}

		var err error
		e, err = decodeEntry(v)
		if err != nil {
			return fmt.Errorf("error decoding result %s: %w", name, err)
		}
		found = true

		return nil
	})

	return e, found, err
}

// Delete removes the result stored under name, if any.
func (db *DB) Delete(name string) error {
	return db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(resultsBucket).Delete([]byte(name))
	})
}

// Names lists the names with a stored result, in byte order.
func (db *DB) Names() ([]string, error) {
	var names []string

	return names, db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(resultsBucket).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
}

// Encoding:
//   - [0]      encoding version
//   - [1]      1 if synced, 0 otherwise
//   - [2:34]   digest of the parameters and samples
//   - [34:38]  number of candidates, big endian
//   - then for each candidate, 24 bytes: s0, s1, alignment (int32), offset
//     (int32), all big endian
func encodeEntry(e recovery.Entry) []byte {
	res := e.Result
	b := make([]byte, headerSize+candidateSize*len(res.Candidates))

	b[0] = encodingVersion
	if res.Synced {
		b[1] = 1
	}
	copy(b[2:], e.Digest[:])
	binary.BigEndian.PutUint32(b[2+recovery.DigestSize:], uint32(len(res.Candidates)))

	tail := b[headerSize:]
	for _, c := range res.Candidates {
		binary.BigEndian.PutUint64(tail[0:], c.State.S0)
		binary.BigEndian.PutUint64(tail[8:], c.State.S1)
		binary.BigEndian.PutUint32(tail[16:], uint32(int32(c.Alignment)))
		binary.BigEndian.PutUint32(tail[20:], uint32(int32(c.Offset)))
		tail = tail[candidateSize:]
	}

	return b
}

func decodeEntry(b []byte) (recovery.Entry, error) {
	if len(b) < 1 || b[0] != encodingVersion {
		return recovery.Entry{}, errors.New("unknown result encoding version")
	}
	if len(b) < headerSize {
		return recovery.Entry{}, fmt.Errorf("result encoding too short: %d bytes", len(b))
	}

	n := int(binary.BigEndian.Uint32(b[2+recovery.DigestSize:]))
	if len(b) != headerSize+n*candidateSize {
		return recovery.Entry{}, fmt.Errorf("result encoding length %d does not match %d candidates", len(b), n)
	}

	var e recovery.Entry
	copy(e.Digest[:], b[2:])

	res := xsrecover.Result{
		Candidates: make([]xsrecover.Candidate, n),
		Synced:     b[1] == 1,
	}

	tail := b[headerSize:]
	for i := range res.Candidates {
		res.Candidates[i] = xsrecover.Candidate{
			State: xorshift.State{
				S0: binary.BigEndian.Uint64(tail[0:]),
				S1: binary.BigEndian.Uint64(tail[8:]),
			},
			Alignment: int(int32(binary.BigEndian.Uint32(tail[16:]))),
			Offset:    int(int32(binary.BigEndian.Uint32(tail[20:]))),
		}
		tail = tail[candidateSize:]
	}
	e.Result = res

	return e, nil
}
