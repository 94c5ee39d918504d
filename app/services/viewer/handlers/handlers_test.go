package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardanlabs/simwallet/app/services/viewer/handlers"
	"github.com/ardanlabs/simwallet/business/core/dashboard"
	"github.com/ardanlabs/simwallet/business/core/explorer"
	"github.com/ardanlabs/simwallet/business/sys/backend"
	"github.com/ardanlabs/simwallet/business/sys/backend/backendtest"
	"github.com/ardanlabs/simwallet/business/web/errs"
	"github.com/ardanlabs/simwallet/foundation/localstore"
	"github.com/ardanlabs/simwallet/foundation/logger"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	aliceWallet = "4c2a1f0e9b7d6a55"
	bobWallet   = "9e1d3b7c5a2f4e88"
)

type viewer struct {
	t      *testing.T
	url    string
	client *http.Client
}

func newViewer(t *testing.T) (*viewer, *backendtest.Server) {
	srv := backendtest.New()
	t.Cleanup(srv.Close)

	srv.AddUser("alice", "secret", aliceWallet)
	srv.SetBalances(backend.Balances{aliceWallet: 50, bobWallet: 5})
	srv.SetChain(backendtest.Chain(3))

	store, err := localstore.Open(filepath.Join(t.TempDir(), "local.db"))
	if err != nil {
		t.Fatalf("Should be able to open the store: %s", err)
	}
	t.Cleanup(func() { store.Close() })

	sessions := dashboard.NewRegistry(dashboard.RegistryConfig{
		Factory: func(id string) (*dashboard.Session, error) {
			client, err := backend.New(backend.Config{Host: srv.URL})
			if err != nil {
				return nil, err
			}
			return dashboard.New(dashboard.Config{ID: id, Client: client, Storage: store.Scope(id)}), nil
		},
	})
	t.Cleanup(sessions.Shutdown)

	mux, err := handlers.UIMux(handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      logger.NewNop(),
		Sessions: sessions,
		Origin:   "*",
	})
	if err != nil {
		t.Fatalf("Should be able to construct the mux: %s", err)
	}

	api := httptest.NewServer(mux)
	t.Cleanup(api.Close)

	jar, _ := cookiejar.New(nil)

	return &viewer{t: t, url: api.URL, client: &http.Client{Jar: jar}}, srv
}

func (v *viewer) call(method string, path string, body any, out any) int {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			v.t.Fatalf("Should be able to marshal the body: %s", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, v.url+path, r)
	if err != nil {
		v.t.Fatalf("Should be able to construct the request: %s", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		v.t.Fatalf("Should be able to call %s %s: %s", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			v.t.Fatalf("Should be able to decode the response of %s %s: %s", method, path, err)
		}
	}

	return resp.StatusCode
}

type result struct {
	Success bool           `json:"success"`
	Session dashboard.View `json:"session"`
}

func login(t *testing.T, v *viewer) {
	var res result
	if status := v.call(http.MethodPost, "/v1/login", map[string]string{"username": "alice", "password": "secret"}, &res); status != http.StatusOK || !res.Success {
		t.Fatalf("Should be able to login: %d %+v", status, res)
	}
}

func TestPage(t *testing.T) {
	v, _ := newViewer(t)

	t.Log("Given the need to serve the dashboard page.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen a browser asks for the page.", testID)
		{
			resp, err := v.client.Get(v.url + "/")
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to get the page: %s", failed, testID, err)
			}
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "Block #2") {
				t.Fatalf("\t%s\tTest %d:\tShould render the page with the chain: %d", failed, testID, resp.StatusCode)
			}
			t.Logf("\t%s\tTest %d:\tShould render the page with the chain.", success, testID)

			var first *http.Cookie
			for _, c := range resp.Cookies() {
				if c.Name == "simwallet_session" {
					first = c
				}
			}
			if first == nil {
				t.Fatalf("\t%s\tTest %d:\tShould issue a session cookie.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould issue a session cookie.", success, testID)

			var view dashboard.View
			v.call(http.MethodGet, "/v1/session", nil, &view)
			if view.ID != first.Value {
				t.Fatalf("\t%s\tTest %d:\tShould keep the same session: got %s, exp %s", failed, testID, view.ID, first.Value)
			}
			t.Logf("\t%s\tTest %d:\tShould keep the same session.", success, testID)
		}
	}
}

func TestAuth(t *testing.T) {
	v, _ := newViewer(t)

	t.Log("Given the need to login through the viewer.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the form is empty.", testID)
		{
			var er errs.Response
			status := v.call(http.MethodPost, "/v1/login", map[string]string{}, &er)
			if status != http.StatusBadRequest || er.Fields["username"] == "" || er.Fields["password"] == "" {
				t.Fatalf("\t%s\tTest %d:\tShould report the missing fields: %d %+v", failed, testID, status, er)
			}
			t.Logf("\t%s\tTest %d:\tShould report the missing fields.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the body is not json.", testID)
		{
			req, _ := http.NewRequest(http.MethodPost, v.url+"/v1/login", strings.NewReader("username=alice"))
			resp, err := v.client.Do(req)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to call: %s", failed, testID, err)
			}
			resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest %d:\tShould refuse the body: got %d", failed, testID, resp.StatusCode)
			}
			t.Logf("\t%s\tTest %d:\tShould refuse the body.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the password is wrong.", testID)
		{
			var res result
			v.call(http.MethodPost, "/v1/login", map[string]string{"username": "alice", "password": "nope"}, &res)
			if res.Success || res.Session.Authenticated {
				t.Fatalf("\t%s\tTest %d:\tShould refuse the login: %+v", failed, testID, res)
			}
			t.Logf("\t%s\tTest %d:\tShould refuse the login.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the credentials are right.", testID)
		{
			login(t, v)

			var view dashboard.View
			v.call(http.MethodGet, "/v1/session", nil, &view)
			if !view.Authenticated || view.Wallet != aliceWallet || view.Tab != dashboard.TabSend {
				t.Fatalf("\t%s\tTest %d:\tShould show the send tab for alice: %+v", failed, testID, view)
			}
			t.Logf("\t%s\tTest %d:\tShould show the send tab for alice.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen opening tabs and switching theme.", testID)
		{
			var res result
			if status := v.call(http.MethodPost, "/v1/tabs/history", nil, &res); status != http.StatusOK || res.Session.Tab != dashboard.TabHistory {
				t.Fatalf("\t%s\tTest %d:\tShould open the history tab: %d %+v", failed, testID, status, res)
			}
			if status := v.call(http.MethodPost, "/v1/tabs/settings", nil, nil); status != http.StatusNotFound {
				t.Fatalf("\t%s\tTest %d:\tShould refuse an unknown tab: got %d", failed, testID, status)
			}
			t.Logf("\t%s\tTest %d:\tShould open known tabs only.", success, testID)

			v.call(http.MethodPost, "/v1/theme", map[string]bool{"dark": true}, &res)
			if res.Session.Theme != dashboard.ThemeDark {
				t.Fatalf("\t%s\tTest %d:\tShould switch to the dark theme: %+v", failed, testID, res)
			}
			t.Logf("\t%s\tTest %d:\tShould switch to the dark theme.", success, testID)
		}
	}
}

func TestWallet(t *testing.T) {
	v, srv := newViewer(t)
	login(t, v)

	type list struct {
		Lines       []string `json:"lines"`
		Placeholder string   `json:"placeholder"`
	}

	t.Log("Given the need to move funds through the viewer.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen sending more than the balance.", testID)
		{
			var res struct {
				Success bool `json:"success"`
			}
			v.call(http.MethodPost, "/v1/send", map[string]string{"sender": aliceWallet, "recipient": bobWallet, "amount": "500"}, &res)
			if res.Success || srv.Hits(http.MethodPost, "/api/send") != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould reject the transfer before the backend.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the transfer before the backend.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen sending a valid amount.", testID)
		{
			var res struct {
				Success bool `json:"success"`
				Pending list `json:"pending"`
			}
			v.call(http.MethodPost, "/v1/send", map[string]string{"sender": aliceWallet, "recipient": bobWallet, "amount": "12.5"}, &res)
			if !res.Success || len(res.Pending.Lines) != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould accept the transfer: %+v", failed, testID, res)
			}
			t.Logf("\t%s\tTest %d:\tShould accept the transfer.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen mining the pending transfer.", testID)
		{
			var res struct {
				Success bool            `json:"success"`
				Pending list            `json:"pending"`
				Cards   []explorer.Card `json:"cards"`
			}
			v.call(http.MethodPost, "/v1/mine", map[string]string{"miner": aliceWallet}, &res)
			if !res.Success || len(res.Cards) != 4 || res.Pending.Placeholder == "" {
				t.Fatalf("\t%s\tTest %d:\tShould mine a block: %+v", failed, testID, res)
			}
			t.Logf("\t%s\tTest %d:\tShould mine a block.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen creating and copying a wallet.", testID)
		{
			var res struct {
				Success bool   `json:"success"`
				Wallet  string `json:"wallet"`
			}
			v.call(http.MethodGet, "/v1/wallet/copy", nil, &res)
			if res.Success {
				t.Fatalf("\t%s\tTest %d:\tShould have nothing to copy yet.", failed, testID)
			}

			v.call(http.MethodPost, "/v1/wallet", nil, &res)
			created := res.Wallet
			v.call(http.MethodGet, "/v1/wallet/copy", nil, &res)
			if !res.Success || created == "" || res.Wallet != created {
				t.Fatalf("\t%s\tTest %d:\tShould copy the created wallet: %q %+v", failed, testID, created, res)
			}
			t.Logf("\t%s\tTest %d:\tShould copy the created wallet.", success, testID)
		}
	}
}

func TestExplorer(t *testing.T) {
	v, _ := newViewer(t)

	type view struct {
		Grid  explorer.GridView  `json:"grid"`
		Modal explorer.ModalView `json:"modal"`
	}

	type nav struct {
		Moved bool               `json:"moved"`
		Modal explorer.ModalView `json:"modal"`
	}

	t.Log("Given the need to browse the chain through the viewer.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen reading the grid.", testID)
		{
			var ev view
			v.call(http.MethodGet, "/v1/explorer", nil, &ev)
			if len(ev.Grid.Cards) != 3 || ev.Modal.Open {
				t.Fatalf("\t%s\tTest %d:\tShould show a card per block: %+v", failed, testID, ev)
			}
			t.Logf("\t%s\tTest %d:\tShould show a card per block.", success, testID)

			var gv explorer.GridView
			v.call(http.MethodPost, "/v1/explorer/viewport", map[string]float64{"offset": 0, "client_width": 500, "scroll_width": 900}, &gv)
			if gv.Controls.Left || !gv.Controls.Right {
				t.Fatalf("\t%s\tTest %d:\tShould show only the right control: %+v", failed, testID, gv.Controls)
			}
			t.Logf("\t%s\tTest %d:\tShould show only the right control.", success, testID)

			if status := v.call(http.MethodPost, "/v1/explorer/viewport", map[string]float64{"offset": -1}, nil); status != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest %d:\tShould refuse a negative geometry: got %d", failed, testID, status)
			}
			if status := v.call(http.MethodPost, "/v1/explorer/scroll/up", nil, nil); status != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest %d:\tShould refuse an unknown scroll direction: got %d", failed, testID, status)
			}
			t.Logf("\t%s\tTest %d:\tShould refuse bad input.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen navigating the modal.", testID)
		{
			if status := v.call(http.MethodPost, "/v1/explorer/nav/next", nil, nil); status != http.StatusConflict {
				t.Fatalf("\t%s\tTest %d:\tShould refuse to navigate a closed modal: got %d", failed, testID, status)
			}
			if status := v.call(http.MethodPost, "/v1/explorer/open/7", nil, nil); status != http.StatusNotFound {
				t.Fatalf("\t%s\tTest %d:\tShould refuse a block out of range: got %d", failed, testID, status)
			}
			t.Logf("\t%s\tTest %d:\tShould refuse invalid modal commands.", success, testID)

			var mv explorer.ModalView
			v.call(http.MethodPost, "/v1/explorer/open/0", nil, &mv)
			if !mv.Open || mv.Detail.Title != "Block #0" || mv.Detail.Placeholder != explorer.NoTransactions {
				t.Fatalf("\t%s\tTest %d:\tShould open the genesis block: %+v", failed, testID, mv)
			}
			t.Logf("\t%s\tTest %d:\tShould open the genesis block.", success, testID)

			var nr nav
			v.call(http.MethodPost, "/v1/explorer/nav/prev", nil, &nr)
			if nr.Moved || nr.Modal.Index != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould stay at the first block: %+v", failed, testID, nr)
			}
			v.call(http.MethodPost, "/v1/explorer/nav/next", nil, &nr)
			if !nr.Moved || nr.Modal.Index != 1 || nr.Modal.Animation != explorer.AnimationSlideRight {
				t.Fatalf("\t%s\tTest %d:\tShould move to the next block: %+v", failed, testID, nr)
			}
			t.Logf("\t%s\tTest %d:\tShould move within the chain only.", success, testID)

			v.call(http.MethodPost, "/v1/explorer/click/content", nil, &mv)
			if !mv.Open {
				t.Fatalf("\t%s\tTest %d:\tShould stay open on a content click.", failed, testID)
			}
			v.call(http.MethodPost, "/v1/explorer/click/overlay", nil, &mv)
			if mv.Open {
				t.Fatalf("\t%s\tTest %d:\tShould close on an overlay click.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould close on an overlay click only.", success, testID)
		}
	}
}
