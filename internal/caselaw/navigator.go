package caselaw

import (
	"context"
	"sync"

	"github.com/harshmohite04/Firm-Connect-sub000/pkg/logger"
	"golang.org/x/sync/errgroup"
)

type LoadState int

const (
	StateIdle LoadState = iota
	StateLoading
	StateReady
	StateError
)

func (s LoadState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// Source fetches a document body and its metadata.
type Source interface {
	Document(ctx context.Context, id string) (*Document, error)
	Meta(ctx context.Context, id string) (*DocMeta, error)
}

// Opener shows a URL outside the application (browser, OS handler).
type Opener interface {
	Open(url string) error
}

type OpenerFunc func(url string) error

func (f OpenerFunc) Open(url string) error { return f(url) }

// NavigateFunc lets an embedding view own cross-document navigation.
type NavigateFunc func(docID string)

// Entry is one frame of the back stack.
type Entry struct {
	DocID string
	Title string
}

// View is a consistent copy of the navigator state. Doc and Meta are both set
// in StateReady and both nil otherwise.
type View struct {
	DocID string
	Title string
	State LoadState
	Doc   *Document
	Meta  *DocMeta
	Err   error
	Depth int
}

type Navigator struct {
	src      Source
	origin   string
	opener   Opener
	navigate NavigateFunc
	onChange func()

	mu      sync.Mutex
	history []Entry
	current Entry
	state   LoadState
	doc     *Document
	meta    *DocMeta
	err     error
	gen     uint64
}

type Option func(*Navigator)

// WithNavigate routes document navigation to fn instead of loading in place.
func WithNavigate(fn NavigateFunc) Option {
	return func(n *Navigator) { n.navigate = fn }
}

func WithOpener(o Opener) Option {
	return func(n *Navigator) { n.opener = o }
}

// WithOnChange registers a callback run after every state change, outside
// the lock.
func WithOnChange(fn func()) Option {
	return func(n *Navigator) { n.onChange = fn }
}

func NewNavigator(src Source, origin string, opts ...Option) *Navigator {
	n := &Navigator{src: src, origin: origin}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Open shows docID without touching the back stack.
func (n *Navigator) Open(ctx context.Context, docID string) error {
	return n.load(ctx, Entry{DocID: docID})
}

// Click handles a click on an in-document link. The returned action says
// what happened; the caller must not follow href itself.
func (n *Navigator) Click(ctx context.Context, href string) (Action, error) {
	action := ClassifyHref(href, n.origin)
	switch action.Kind {
	case ActionNavigate:
		n.mu.Lock()
		if n.current.DocID != "" {
			n.history = append(n.history, Entry{DocID: n.current.DocID, Title: n.titleLocked()})
		}
		n.mu.Unlock()
		return action, n.dispatch(ctx, Entry{DocID: action.DocID})
	case ActionOpenExternal:
		if n.opener != nil {
			if err := n.opener.Open(action.URL); err != nil {
				logger.Warn("caselaw: open %s: %v", action.URL, err)
				return action, err
			}
		}
	}
	return action, nil
}

// Back pops the most recent entry and shows it. It reports false, doing
// nothing, when the stack is empty.
func (n *Navigator) Back(ctx context.Context) (bool, error) {
	n.mu.Lock()
	if len(n.history) == 0 {
		n.mu.Unlock()
		return false, nil
	}
	prev := n.history[len(n.history)-1]
	n.history = n.history[:len(n.history)-1]
	n.mu.Unlock()
	return true, n.dispatch(ctx, prev)
}

func (n *Navigator) dispatch(ctx context.Context, e Entry) error {
	if n.navigate != nil {
		n.navigate(e.DocID)
		return nil
	}
	return n.load(ctx, e)
}

// load clears the current document, fetches body and metadata concurrently
// and publishes both or an error. A load superseded by a newer one is
// discarded when it completes.
func (n *Navigator) load(ctx context.Context, e Entry) error {
	n.mu.Lock()
	n.gen++
	gen := n.gen
	n.current = e
	n.state = StateLoading
	n.doc, n.meta, n.err = nil, nil, nil
	n.mu.Unlock()
	n.changed()

	var (
		doc  *Document
		meta *DocMeta
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		doc, err = n.src.Document(gctx, e.DocID)
		return err
	})
	g.Go(func() error {
		var err error
		meta, err = n.src.Meta(gctx, e.DocID)
		return err
	})
	err := g.Wait()

	n.mu.Lock()
	if gen != n.gen {
		n.mu.Unlock()
		logger.Debug("caselaw: discarding stale load of %s", e.DocID)
		return nil
	}
	if err != nil {
		n.state = StateError
		n.err = err
		logger.Warn("caselaw: load %s: %v", e.DocID, err)
	} else {
		n.state = StateReady
		n.doc, n.meta = doc, meta
		n.current.Title = n.titleLocked()
	}
	n.mu.Unlock()
	n.changed()
	return err
}

func (n *Navigator) titleLocked() string {
	switch {
	case n.doc != nil && n.doc.Title != "":
		return n.doc.Title
	case n.meta != nil && n.meta.Title != "":
		return n.meta.Title
	default:
		return n.current.Title
	}
}

func (n *Navigator) changed() {
	if n.onChange != nil {
		n.onChange()
	}
}

func (n *Navigator) View() View {
	n.mu.Lock()
	defer n.mu.Unlock()
	return View{
		DocID: n.current.DocID,
		Title: n.current.Title,
		State: n.state,
		Doc:   n.doc,
		Meta:  n.meta,
		Err:   n.err,
		Depth: len(n.history),
	}
}

// History returns the back stack, oldest first.
func (n *Navigator) History() []Entry {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Entry(nil), n.history...)
}
