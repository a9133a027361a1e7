// Copyright 2026 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package actor

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	cerrors "github.com/pingcap/actorflow/pkg/errors"
	"github.com/pingcap/actorflow/pkg/eval"
	"github.com/pingcap/errors"
)

// Handler serves one selector.
type Handler struct {
	// Param names the payload inside Body. Empty means the payload is ignored.
	Param string
	Body  eval.Expr
}

// Field is a private actor field and its initializer, nil meaning Nil.
type Field struct {
	Name string
	Init eval.Expr
}

// Template describes a kind of actor. A template must not be modified
// after it has been spawned once, its compiled form is cached.
type Template struct {
	Name string
	// Params are bound to the constructor arguments.
	Params []string
	// Fields are initialized in order, after Params are bound.
	Fields []Field
	// Init runs once the fields are initialized.
	Init eval.Expr
	// Asks serves requests, the handler result binds the reply.
	Asks map[string]Handler
	// Tells serves one-way messages.
	Tells map[string]Handler
}

// TemplateName implements eval.Template.
func (t *Template) TemplateName() string {
	return t.Name
}

// compiledTemplate is the dispatch table built from a Template.
type compiledTemplate struct {
	name   string
	params []string
	fields []string
	ctor   eval.Expr
	asks   map[string]Handler
	tells  map[string]Handler
}

func compileTemplate(t *Template) (*compiledTemplate, error) {
	if t == nil {
		return nil, cerrors.ErrInvalidTemplate.GenWithStackByArgs("<nil>", "template is nil")
	}
	invalid := func(format string, args ...interface{}) error {
		return cerrors.ErrInvalidTemplate.GenWithStackByArgs(t.Name, fmt.Sprintf(format, args...))
	}
	if t.Name == "" {
		return nil, invalid("template name is empty")
	}

	ct := &compiledTemplate{
		name:   t.Name,
		params: append([]string(nil), t.Params...),
		asks:   make(map[string]Handler, len(t.Asks)),
		tells:  make(map[string]Handler, len(t.Tells)),
	}
	names := make(map[string]struct{}, len(t.Params)+len(t.Fields))
	for _, p := range t.Params {
		if _, dup := names[p]; dup || p == "" {
			return nil, invalid("invalid or duplicated parameter '%s'", p)
		}
		names[p] = struct{}{}
	}
	ctor := make([]eval.Expr, 0, len(t.Fields)+1)
	for _, f := range t.Fields {
		if _, dup := names[f.Name]; dup || f.Name == "" {
			return nil, invalid("invalid or duplicated field '%s'", f.Name)
		}
		names[f.Name] = struct{}{}
		ct.fields = append(ct.fields, f.Name)
		if f.Init != nil {
			ctor = append(ctor, &eval.Assign{Name: f.Name, Value: f.Init})
		}
	}
	if t.Init != nil {
		ctor = append(ctor, t.Init)
	}
	ct.ctor = &eval.Seq{Exprs: ctor}

	for sel, h := range t.Asks {
		if sel == "" || h.Body == nil {
			return nil, invalid("ask handler '%s' has no body", sel)
		}
		ct.asks[sel] = h
	}
	for sel, h := range t.Tells {
		if sel == "" || h.Body == nil {
			return nil, invalid("tell handler '%s' has no body", sel)
		}
		ct.tells[sel] = h
	}
	return ct, nil
}

// templateCache keeps compiled templates, keyed by template pointer.
type templateCache struct {
	cache *lru.Cache
}

func newTemplateCache(size int) (*templateCache, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &templateCache{cache: cache}, nil
}

func (c *templateCache) get(t *Template) (*compiledTemplate, error) {
	if v, ok := c.cache.Get(t); ok {
		return v.(*compiledTemplate), nil
	}
	ct, err := compileTemplate(t)
	if err != nil {
		return nil, err
	}
	c.cache.Add(t, ct)
	return ct, nil
}
