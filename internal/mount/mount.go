// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mount rewrites the virtual paths callers use into backend paths.
package mount

import (
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fiosemu/fiosemu/cfg"
)

// Translator maps a virtual path onto the path handed to the kernel.
type Translator interface {
	Translate(virtual string) string
}

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc func(string) string

func (f TranslatorFunc) Translate(virtual string) string {
	return f(virtual)
}

// ToApp0 roots device-qualified paths at /app0. A path whose first slash is
// not its first character has everything before that slash replaced, so
//
//	host0:/data/save.bin
//
// becomes
//
//	/app0/data/save.bin
//
// Absolute paths and paths without a slash are returned unchanged.
func ToApp0(p string) string {
	i := strings.IndexByte(p, '/')
	if i > 0 {
		return cfg.App0MountPoint + p[i:]
	}
	return p
}

type entry struct {
	virtual string
	host    string
}

// Table maps virtual prefixes to host directories. The longest matching
// prefix wins. Paths matching no prefix pass through after ToApp0.
type Table struct {
	// INVARIANT: Sorted by decreasing len(virtual)
	entries []entry
}

// NewTable builds a table from mount points. Virtual prefixes are cleaned;
// host directories are used as given.
func NewTable(mounts []cfg.MountPoint) *Table {
	t := &Table{}
	for _, m := range mounts {
		t.entries = append(t.entries, entry{
			virtual: path.Clean(m.Virtual),
			host:    string(m.Host),
		})
	}
	sort.SliceStable(t.entries, func(i, j int) bool {
		return len(t.entries[i].virtual) > len(t.entries[j].virtual)
	})
	return t
}

func under(p, prefix string) (rest string, ok bool) {
	if prefix == "/" {
		return p, strings.HasPrefix(p, "/")
	}
	if p == prefix {
		return "/", true
	}
	if strings.HasPrefix(p, prefix+"/") {
		return p[len(prefix):], true
	}
	return "", false
}

func (t *Table) Translate(virtual string) string {
	p := ToApp0(virtual)
	if len(t.entries) == 0 {
		return p
	}

	cleaned := path.Clean(p)
	for _, e := range t.entries {
		if rest, ok := under(cleaned, e.virtual); ok {
			return filepath.Join(e.host, filepath.FromSlash(rest))
		}
	}
	return p
}

// Mounts returns the table in match order.
func (t *Table) Mounts() []cfg.MountPoint {
	mounts := make([]cfg.MountPoint, 0, len(t.entries))
	for _, e := range t.entries {
		mounts = append(mounts, cfg.MountPoint{Virtual: e.virtual, Host: cfg.ResolvedPath(e.host)})
	}
	return mounts
}
