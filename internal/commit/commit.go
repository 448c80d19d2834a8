// Package commit implements immutable commit snapshots and the commit graph.
//
// This package provides:
// - Commit objects: message, timestamp, parent ids and a filename -> blob id map
// - A canonical encoding whose BLAKE3 hash is the commit id
// - Graph: commit creation and lookup, ancestry walks and split-point search
//
// Commits are stored in the object store next to blobs and listed in a
// commit index kept in the key-value store.
package commit

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/javanhut/gitlet/internal/cas"
)

// TimeLayout is the fixed timestamp format recorded in commits.
const TimeLayout = "Mon Jan 2 15:04:05 2006 -0700"

var (
	ErrEmptyMessage      = errors.New("empty commit message")
	ErrCommitNotFound    = errors.New("commit not found")
	ErrAmbiguousCommitID = errors.New("ambiguous commit id")
	ErrNoCommonAncestor  = errors.New("no common ancestor")
)

// Commit is an immutable snapshot of the tracked files.
type Commit struct {
	ID        cas.Hash            // Hash of the canonical encoding
	Message   string              // Commit message
	Timestamp string              // Creation time formatted with TimeLayout
	Parents   []cas.Hash          // 0 for root, 1 for normal, 2 for merge commits
	Files     map[string]cas.Hash // Tracked filename -> blob id
}

// FormatTime renders t in the commit timestamp format.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// IsMerge reports whether c has more than one parent.
func (c *Commit) IsMerge() bool {
	return len(c.Parents) > 1
}

// Tracks reports whether filename is part of the snapshot, and its blob id.
func (c *Commit) Tracks(filename string) (cas.Hash, bool) {
	h, ok := c.Files[filename]
	return h, ok
}

// Encode returns the canonical encoding of c. Files are written sorted by
// name so the encoding, and therefore the id, never depends on map order.
//
// Layout:
//
//	timestamp <timestamp>
//	parent <hex>            (one line per parent, in order)
//	file <hex> <quoted name> (one line per file, sorted)
//	<blank line>
//	<message bytes>
func (c *Commit) Encode() []byte {
	var buf bytes.Buffer

	buf.WriteString("timestamp ")
	buf.WriteString(c.Timestamp)
	buf.WriteByte('\n')

	for _, p := range c.Parents {
		buf.WriteString("parent ")
		buf.WriteString(p.String())
		buf.WriteByte('\n')
	}

	for _, name := range slices.Sorted(maps.Keys(c.Files)) {
		buf.WriteString("file ")
		buf.WriteString(c.Files[name].String())
		buf.WriteByte(' ')
		buf.WriteString(strconv.Quote(name))
		buf.WriteByte('\n')
	}

	buf.WriteByte('\n')
	buf.WriteString(c.Message)

	return buf.Bytes()
}

// Hash computes the id of c from its canonical encoding.
func (c *Commit) Hash() cas.Hash {
	return cas.SumB3(c.Encode())
}

// Decode parses a canonical commit encoding. The returned commit's ID is the
// hash of data.
func Decode(data []byte) (*Commit, error) {
	c := &Commit{Files: make(map[string]cas.Hash)}

	header, message, found := bytes.Cut(data, []byte("\n\n"))
	if !found {
		return nil, fmt.Errorf("decode commit: missing header terminator")
	}
	c.Message = string(message)

	sc := bufio.NewScanner(bytes.NewReader(header))
	sc.Buffer(make([]byte, 0, 4096), len(header)+1)
	first := true
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), " ")
		if !ok {
			return nil, fmt.Errorf("decode commit: malformed line %q", sc.Text())
		}
		if first && key != "timestamp" {
			return nil, fmt.Errorf("decode commit: first line must be timestamp, got %q", key)
		}
		first = false

		switch key {
		case "timestamp":
			c.Timestamp = value

		case "parent":
			h, err := cas.ParseHash(value)
			if err != nil {
				return nil, fmt.Errorf("decode commit: invalid parent: %w", err)
			}
			c.Parents = append(c.Parents, h)

		case "file":
			hexID, quoted, ok := strings.Cut(value, " ")
			if !ok {
				return nil, fmt.Errorf("decode commit: malformed file line %q", value)
			}
			h, err := cas.ParseHash(hexID)
			if err != nil {
				return nil, fmt.Errorf("decode commit: invalid blob id: %w", err)
			}
			name, err := strconv.Unquote(quoted)
			if err != nil {
				return nil, fmt.Errorf("decode commit: invalid file name %s: %w", quoted, err)
			}
			c.Files[name] = h

		default:
			return nil, fmt.Errorf("decode commit: unknown field %q", key)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("decode commit: %w", err)
	}
	if first {
		return nil, fmt.Errorf("decode commit: empty header")
	}

	c.ID = cas.SumB3(data)
	return c, nil
}
