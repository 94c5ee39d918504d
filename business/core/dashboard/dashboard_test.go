package dashboard_test

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ardanlabs/simwallet/business/core/dashboard"
	"github.com/ardanlabs/simwallet/business/sys/backend"
	"github.com/ardanlabs/simwallet/business/sys/backend/backendtest"
	"github.com/ardanlabs/simwallet/foundation/events"
	"github.com/ardanlabs/simwallet/foundation/localstore"
	"github.com/ardanlabs/simwallet/foundation/nameservice"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func newSession(t *testing.T, srv *backendtest.Server, store dashboard.Storage) (*dashboard.Session, *events.Recorder) {
	client, err := backend.New(backend.Config{Host: srv.URL})
	if err != nil {
		t.Fatalf("Should be able to construct a client: %s", err)
	}

	var rec events.Recorder
	s := dashboard.New(dashboard.Config{
		ID:       "test",
		Client:   client,
		Storage:  store,
		Notifier: &rec,
	})
	t.Cleanup(s.Shutdown)

	return s, &rec
}

func TestLogin(t *testing.T) {
	srv := backendtest.New()
	defer srv.Close()

	srv.AddUser("alice", "secret", "4c2a1f0e9b7d6a55")
	srv.SetBalances(backend.Balances{"4c2a1f0e9b7d6a55": 10})
	srv.SetChain(backendtest.Chain(4))

	ctx := context.Background()

	t.Log("Given the need to login to the dashboard.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the password is wrong.", testID)
		{
			s, rec := newSession(t, srv, nil)

			if s.Login(ctx, "alice", "nope") {
				t.Fatalf("\t%s\tTest %d:\tShould refuse the login.", failed, testID)
			}
			if rec.Count("Incorrect password.") != 1 || s.View().Authenticated {
				t.Fatalf("\t%s\tTest %d:\tShould raise the backend message: %v", failed, testID, rec.Messages())
			}
			t.Logf("\t%s\tTest %d:\tShould refuse the login with the backend message.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the credentials are right.", testID)
		{
			s, rec := newSession(t, srv, nil)

			if !s.Login(ctx, " alice ", "secret") {
				t.Fatalf("\t%s\tTest %d:\tShould accept the login: %v", failed, testID, rec.Messages())
			}
			t.Logf("\t%s\tTest %d:\tShould accept the login.", success, testID)

			v := s.View()
			if !v.Authenticated || v.Username != "alice" || v.Wallet != "4c2a1f0e9b7d6a55" || v.Tab != dashboard.TabSend {
				t.Fatalf("\t%s\tTest %d:\tShould show the send tab for the user: %+v", failed, testID, v)
			}
			t.Logf("\t%s\tTest %d:\tShould show the send tab for the user.", success, testID)

			if s.Cache.Len() != 4 {
				t.Fatalf("\t%s\tTest %d:\tShould load the chain: got %d", failed, testID, s.Cache.Len())
			}
			if bals := s.Wallet.BalancesView(); bals.Lines[0] != "alice (4c2a1f0e9b7d6a55): 10.00 SIM" {
				t.Fatalf("\t%s\tTest %d:\tShould load the balances with names: %+v", failed, testID, bals)
			}
			t.Logf("\t%s\tTest %d:\tShould load the chain and the balances.", success, testID)

			if rec.Count("Opened send") != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould notify the opened tab: %v", failed, testID, rec.Messages())
			}
			t.Logf("\t%s\tTest %d:\tShould notify the opened tab.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen signing up twice.", testID)
		{
			s, rec := newSession(t, srv, nil)

			if !s.Signup(ctx, "bob", "pw") {
				t.Fatalf("\t%s\tTest %d:\tShould register the user: %v", failed, testID, rec.Messages())
			}
			if s.Signup(ctx, "bob", "pw") {
				t.Fatalf("\t%s\tTest %d:\tShould refuse the duplicate user.", failed, testID)
			}
			if rec.Count("Signup Successful! Please login.") != 1 || rec.Count("Username already exists.") != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould raise both outcomes: %v", failed, testID, rec.Messages())
			}
			t.Logf("\t%s\tTest %d:\tShould register once and refuse the duplicate.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the backend is broken.", testID)
		{
			s, rec := newSession(t, srv, nil)
			srv.Break("/login")
			defer srv.Fix("/login")

			if s.Login(ctx, "alice", "secret") {
				t.Fatalf("\t%s\tTest %d:\tShould fail the login.", failed, testID)
			}
			if rec.Count("Error during login.") != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould raise the transport notification: %v", failed, testID, rec.Messages())
			}
			t.Logf("\t%s\tTest %d:\tShould raise the transport notification.", success, testID)
		}
	}
}

func TestTabs(t *testing.T) {
	srv := backendtest.New()
	defer srv.Close()
	srv.SetChain(backendtest.Chain(2))

	ctx := context.Background()

	t.Log("Given the need to refresh data when a tab is opened.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen opening each tab.", testID)
		{
			s, rec := newSession(t, srv, nil)
			s.Start(ctx)

			if hits := srv.Hits(http.MethodGet, "/chain"); hits != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould read the chain on start: got %d", failed, testID, hits)
			}
			t.Logf("\t%s\tTest %d:\tShould read the chain on start.", success, testID)

			srv.SetChain(backendtest.Chain(5))

			expect := map[dashboard.Tab]string{
				dashboard.TabBalances: "/balances",
				dashboard.TabExplorer: "/chain",
				dashboard.TabHistory:  "/transactions",
				dashboard.TabPending:  "/pending",
			}
			for tab, path := range expect {
				before := srv.Hits(http.MethodGet, path)
				s.ShowTab(ctx, tab)
				if srv.Hits(http.MethodGet, path) != before+1 {
					t.Fatalf("\t%s\tTest %d:\tShould refresh %s for tab %s.", failed, testID, path, tab)
				}
				if rec.Count("Opened "+string(tab)) != 1 || s.View().Tab != tab {
					t.Fatalf("\t%s\tTest %d:\tShould activate tab %s.", failed, testID, tab)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould refresh the data of each tab.", success, testID)

			if s.Cache.Len() != 5 {
				t.Fatalf("\t%s\tTest %d:\tShould replace the snapshot on the explorer tab: got %d", failed, testID, s.Cache.Len())
			}
			t.Logf("\t%s\tTest %d:\tShould replace the snapshot on the explorer tab.", success, testID)

			if _, err := dashboard.ParseTab("settings"); !errors.Is(err, dashboard.ErrUnknownTab) {
				t.Fatalf("\t%s\tTest %d:\tShould refuse an unknown tab: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould refuse an unknown tab.", success, testID)
		}
	}
}

func TestTheme(t *testing.T) {
	srv := backendtest.New()
	defer srv.Close()

	store, err := localstore.Open(filepath.Join(t.TempDir(), "local.db"))
	if err != nil {
		t.Fatalf("Should be able to open the store: %s", err)
	}
	defer store.Close()

	ctx := context.Background()

	t.Log("Given the need to remember the theme.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen nothing is saved.", testID)
		{
			s, _ := newSession(t, srv, store)
			s.Start(ctx)

			if s.Theme() != dashboard.ThemeLight {
				t.Fatalf("\t%s\tTest %d:\tShould default to the light theme: got %s", failed, testID, s.Theme())
			}
			t.Logf("\t%s\tTest %d:\tShould default to the light theme.", success, testID)

			if err := s.ToggleTheme(true); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould save the theme: %s", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould save the theme.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a new session starts.", testID)
		{
			s, rec := newSession(t, srv, store)
			s.Start(ctx)

			if s.Theme() != dashboard.ThemeDark {
				t.Fatalf("\t%s\tTest %d:\tShould restore the dark theme: got %s", failed, testID, s.Theme())
			}
			t.Logf("\t%s\tTest %d:\tShould restore the dark theme.", success, testID)

			s.ToggleTheme(false)
			if value, _, _ := store.Get("theme"); value != "light" || rec.Count("Switched to Light Mode") != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould switch back to light: %q", failed, testID, value)
			}
			t.Logf("\t%s\tTest %d:\tShould switch back to light.", success, testID)
		}
	}
}

func sessionFactory(srv *backendtest.Server, ns *nameservice.NameService) dashboard.Factory {
	return func(id string) (*dashboard.Session, error) {
		client, err := backend.New(backend.Config{Host: srv.URL})
		if err != nil {
			return nil, err
		}
		return dashboard.New(dashboard.Config{ID: id, Client: client, NS: ns}), nil
	}
}

func TestRegistry(t *testing.T) {
	srv := backendtest.New()
	defer srv.Close()

	ns, _ := nameservice.New("")
	ctx := context.Background()

	t.Log("Given the need to keep one session per user.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen creating sessions.", testID)
		{
			reg := dashboard.NewRegistry(dashboard.RegistryConfig{Factory: sessionFactory(srv, ns)})

			s1, err := reg.Create(ctx)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould create a session: %s", failed, testID, err)
			}
			s2, _ := reg.Create(ctx)

			if s1.ID == s2.ID || reg.Len() != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould give each session its own id.", failed, testID)
			}
			if got, ok := reg.Get(s1.ID); !ok || got != s1 {
				t.Fatalf("\t%s\tTest %d:\tShould find the session by id.", failed, testID)
			}
			if !s1.Cache.Loaded() {
				t.Fatalf("\t%s\tTest %d:\tShould start the session.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould create and start isolated sessions.", success, testID)

			id := "7f8c2a44-1d3e-4b7a-9c55-0e2b6d1f3a90"
			s3, err := reg.Resume(ctx, id)
			if err != nil || s3.ID != id {
				t.Fatalf("\t%s\tTest %d:\tShould resume a session under a known id: %v", failed, testID, err)
			}
			if again, _ := reg.Resume(ctx, id); again != s3 {
				t.Fatalf("\t%s\tTest %d:\tShould return the live session.", failed, testID)
			}
			if s4, _ := reg.Resume(ctx, "not-an-id"); s4.ID == "not-an-id" {
				t.Fatalf("\t%s\tTest %d:\tShould not trust a malformed id.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould resume sessions by id.", success, testID)

			ch := s1.Events.Acquire("ws")
			reg.Shutdown()
			if _, open := <-ch; open || reg.Len() != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould release every session on shutdown.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould release every session on shutdown.", success, testID)
		}
	}
}

func TestRegistryEviction(t *testing.T) {
	srv := backendtest.New()
	defer srv.Close()

	ns, _ := nameservice.New("")
	ctx := context.Background()

	var mu sync.Mutex
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(d)
	}

	t.Log("Given the need to bound the number of live sessions.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen sessions sit idle past the timeout.", testID)
		{
			reg := dashboard.NewRegistry(dashboard.RegistryConfig{
				Factory:     sessionFactory(srv, ns),
				IdleTimeout: 30 * time.Minute,
				Now:         clock,
			})
			defer reg.Shutdown()

			idle, _ := reg.Create(ctx)
			busy, _ := reg.Create(ctx)
			ch := idle.Events.Acquire("ws")

			advance(20 * time.Minute)
			reg.Get(busy.ID)
			advance(20 * time.Minute)

			if n := reg.Sweep(); n != 1 || reg.Len() != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould evict only the idle session: evicted %d, left %d", failed, testID, n, reg.Len())
			}
			if _, exists := reg.Get(idle.ID); exists {
				t.Fatalf("\t%s\tTest %d:\tShould drop the idle session.", failed, testID)
			}
			if _, open := <-ch; open {
				t.Fatalf("\t%s\tTest %d:\tShould shut the idle session down.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould evict and shut down only the idle session.", success, testID)

			back, err := reg.Resume(ctx, idle.ID)
			if err != nil || back.ID != idle.ID || back == idle {
				t.Fatalf("\t%s\tTest %d:\tShould resume an evicted id with a new session: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould resume an evicted id with a new session.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the registry is full.", testID)
		{
			reg := dashboard.NewRegistry(dashboard.RegistryConfig{
				Factory:     sessionFactory(srv, ns),
				MaxSessions: 2,
				Now:         clock,
			})
			defer reg.Shutdown()

			oldest, _ := reg.Create(ctx)
			advance(time.Minute)
			recent, _ := reg.Create(ctx)
			advance(time.Minute)
			reg.Get(oldest.ID)
			advance(time.Minute)

			s, err := reg.Create(ctx)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould create a session: %s", failed, testID, err)
			}
			if reg.Len() != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould stay at the cap: got %d", failed, testID, reg.Len())
			}
			if _, exists := reg.Get(recent.ID); exists {
				t.Fatalf("\t%s\tTest %d:\tShould evict the least recently used session.", failed, testID)
			}
			if _, exists := reg.Get(oldest.ID); !exists {
				t.Fatalf("\t%s\tTest %d:\tShould keep the session used since.", failed, testID)
			}
			if _, exists := reg.Get(s.ID); !exists {
				t.Fatalf("\t%s\tTest %d:\tShould keep the new session.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould evict the least recently used session.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the sweeper runs in the background.", testID)
		{
			reg := dashboard.NewRegistry(dashboard.RegistryConfig{
				Factory:       sessionFactory(srv, ns),
				IdleTimeout:   time.Minute,
				SweepInterval: 5 * time.Millisecond,
				Now:           clock,
			})

			reg.Create(ctx)
			advance(2 * time.Minute)

			deadline := time.Now().Add(time.Second)
			for reg.Len() != 0 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			if reg.Len() != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould sweep idle sessions on its own.", failed, testID)
			}

			reg.Shutdown()
			reg.Shutdown()
			t.Logf("\t%s\tTest %d:\tShould sweep idle sessions and stop on shutdown.", success, testID)
		}
	}
}
