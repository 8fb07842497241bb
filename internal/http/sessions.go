package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/cache"
	"fintrack/internal/table"
)

const sessionCookieName = "fintrack_session"

// viewSession is one browser's table over one account. mu guards every
// field; it is released only while a delete runs against the store.
type viewSession struct {
	mu        sync.Mutex
	id        string
	accountID string
	view      *table.View
	loaded    bool
	notices   []table.Notice

	search *table.Debouncer
	// pushed is the latest term handed to the debouncer, applied the latest
	// one it fired. appliedCh is closed and replaced on every change.
	pushed    string
	applied   string
	appliedCh chan struct{}
}

func (vs *viewSession) applySearch(term string) {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	// a timer that fired just before a reset must not apply its stale term
	if term != vs.pushed {
		return
	}
	vs.view.SetSearch(term)
	vs.applied = term
	vs.wakeSearchers()
}

// resetSearch drops a pending term and syncs the debounce bookkeeping with
// term. Waiting search requests wake up and see they were superseded.
func (vs *viewSession) resetSearch(term string) {
	vs.search.Stop()
	vs.pushed, vs.applied = term, term
	vs.wakeSearchers()
}

func (vs *viewSession) wakeSearchers() {
	close(vs.appliedCh)
	vs.appliedCh = make(chan struct{})
}

func (vs *viewSession) drainNotices() []table.Notice {
	n := vs.notices
	vs.notices = nil
	return n
}

// sessionStore keeps sessions in an LRU keyed on cookie id and account.
type sessionStore struct {
	mu       sync.Mutex
	cache    *cache.LRUCache[*viewSession]
	pageSize int
	delay    time.Duration
}

func newSessionStore(c *cache.LRUCache[*viewSession], pageSize int, delay time.Duration) *sessionStore {
	return &sessionStore{cache: c, pageSize: pageSize, delay: delay}
}

func sessionKey(id, accountID string) string {
	return id + "|" + accountID
}

// getOrCreate returns the session for id and accountID, creating an empty,
// unloaded one if needed. Every hit refreshes the session's TTL.
func (st *sessionStore) getOrCreate(id, accountID string) *viewSession {
	st.mu.Lock()
	defer st.mu.Unlock()

	key := sessionKey(id, accountID)
	if vs, ok := st.cache.Get(key); ok {
		st.cache.Set(key, vs)
		return vs
	}

	vs := &viewSession{id: id, accountID: accountID, appliedCh: make(chan struct{})}
	vs.view = table.NewView(nil,
		table.WithPageSize(st.pageSize),
		table.WithNotifier(table.NotifierFunc(func(n table.Notice) {
			vs.notices = append(vs.notices, n)
		})),
	)
	vs.search = table.NewDebouncer(st.delay, vs.applySearch)
	st.cache.Set(key, vs)
	return vs
}

func (st *sessionStore) size() int {
	return st.cache.Size()
}

// sessionID returns the caller's session cookie, issuing a new one when it
// is missing or malformed.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
