package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	api "romuo/internal/http"
	"romuo/internal/identity"
	"romuo/internal/modules/catalog"
	"romuo/internal/modules/dispatch"
	"romuo/internal/modules/fleet"
	"romuo/internal/modules/pricing"
	"romuo/internal/modules/ride"
	"romuo/internal/modules/zone"
)

// tokenResolver maps bearer tokens straight to identities.
type tokenResolver map[string]identity.Identity

func (r tokenResolver) Resolve(_ context.Context, token string) (identity.Identity, error) {
	ident, ok := r[token]
	if !ok {
		return identity.Identity{}, identity.ErrUnauthenticated
	}
	return ident, nil
}

type fixture struct {
	router *gin.Engine
	fleet  *fleet.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat, err := catalog.New(catalog.DefaultClasses())
	if err != nil {
		t.Fatal(err)
	}
	zones := zone.NewService(zone.NewMemStore(), cat)
	pricer := pricing.NewService(cat, zones, pricing.DefaultConfig())
	fleetStore := fleet.NewMemStore()
	fleetSvc := fleet.NewService(fleetStore, nil, cat, nil)
	rideStore := ride.NewMemStore()
	rides := ride.NewService(rideStore, pricer, fleetSvc, nil, nil)
	dp := dispatch.NewService(rideStore, fleetStore)

	resolver := tokenResolver{
		"rider-token":  {UserID: "rider-1", Role: identity.RolePassenger, AccountType: identity.AccountPersonal},
		"driver-token": {UserID: "drv-login", Role: identity.RoleDriver},
		"admin-token":  {UserID: "admin-1", Role: identity.RoleAdmin},
	}

	srv := api.NewServer(api.ServerDeps{
		Rides:    rides,
		Fleet:    fleetSvc,
		Zones:    zones,
		Pricing:  pricer,
		Catalog:  cat,
		Dispatch: dp,
		Resolver: resolver,
	})
	return &fixture{router: srv.Routes(), fleet: fleetSvc}
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func createRideBody() map[string]any {
	return map[string]any{
		"pickup":           map[string]float64{"lat": 46.2044, "lng": 6.1432},
		"destination":      map[string]float64{"lat": 46.2381, "lng": 6.1090},
		"vehicle_class_id": "eco",
		"passengers":       2,
		"distance_km":      8,
		"payment_method":   "card",
	}
}

func TestPublicEndpoints_NoAuthRequired(t *testing.T) {
	f := newFixture(t)

	if w := f.do(t, nethttp.MethodGet, "/api/vehicles/classes", "", nil); w.Code != nethttp.StatusOK {
		t.Fatalf("classes: %d", w.Code)
	}
	if w := f.do(t, nethttp.MethodGet, "/api/vehicles/suggest?passengers=5", "", nil); w.Code != nethttp.StatusOK {
		t.Fatalf("suggest: %d", w.Code)
	}
	w := f.do(t, nethttp.MethodPost, "/api/pricing/quote", "", map[string]any{
		"vehicle_class_id": "eco",
		"distance_km":      20,
		"passengers":       2,
	})
	if w.Code != nethttp.StatusOK {
		t.Fatalf("quote: %d body=%s", w.Code, w.Body.String())
	}
	var bd pricing.PriceBreakdown
	if err := json.Unmarshal(w.Body.Bytes(), &bd); err != nil {
		t.Fatal(err)
	}
	// 6.00 + 20*2.50 + 30*0.40
	if bd.FinalPrice != 68.00 {
		t.Fatalf("final price = %.2f, want 68.00", bd.FinalPrice)
	}
}

func TestRideEndpoints_RequireAuth(t *testing.T) {
	f := newFixture(t)
	if w := f.do(t, nethttp.MethodPost, "/api/rides", "", createRideBody()); w.Code != nethttp.StatusUnauthorized {
		t.Fatalf("no token: %d", w.Code)
	}
	if w := f.do(t, nethttp.MethodPost, "/api/rides", "bogus", createRideBody()); w.Code != nethttp.StatusUnauthorized {
		t.Fatalf("bad token: %d", w.Code)
	}
}

func TestRideFlow_BookAcceptComplete(t *testing.T) {
	f := newFixture(t)

	// the driver login needs a fleet profile
	d, err := f.fleet.RegisterDriver(context.Background(), "drv-login", "Jean")
	if err != nil {
		t.Fatal(err)
	}

	w := f.do(t, nethttp.MethodPost, "/api/rides", "rider-token", createRideBody())
	if w.Code != nethttp.StatusCreated {
		t.Fatalf("create: %d body=%s", w.Code, w.Body.String())
	}
	var created ride.Ride
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.Status != ride.StatusPending {
		t.Fatalf("status = %s", created.Status)
	}

	base := fmt.Sprintf("/api/driver/rides/%s", created.ID)
	for _, step := range []string{"accept", "en_route", "arrived", "start", "complete"} {
		if w := f.do(t, nethttp.MethodPost, base+"/"+step, "driver-token", nil); w.Code != nethttp.StatusOK {
			t.Fatalf("%s: %d body=%s", step, w.Code, w.Body.String())
		}
	}

	w = f.do(t, nethttp.MethodGet, "/api/rides/"+string(created.ID), "rider-token", nil)
	if w.Code != nethttp.StatusOK {
		t.Fatalf("get: %d", w.Code)
	}
	var final ride.Ride
	if err := json.Unmarshal(w.Body.Bytes(), &final); err != nil {
		t.Fatal(err)
	}
	if final.Status != ride.StatusCompleted {
		t.Fatalf("final status = %s", final.Status)
	}
	if final.DriverID == nil || *final.DriverID != d.ID {
		t.Fatalf("driver binding = %v, want %s", final.DriverID, d.ID)
	}
}

func TestRideGet_StrangerSees404(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, nethttp.MethodPost, "/api/rides", "rider-token", createRideBody())
	if w.Code != nethttp.StatusCreated {
		t.Fatal(w.Code)
	}
	var created ride.Ride
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	// only admins read foreign rides; a missing ride and a foreign ride
	// answer identically for everyone else
	if w := f.do(t, nethttp.MethodGet, "/api/rides/"+string(created.ID), "admin-token", nil); w.Code != nethttp.StatusOK {
		t.Fatalf("admin get: %d", w.Code)
	}
	missing := f.do(t, nethttp.MethodGet, "/api/rides/nope", "rider-token", nil)
	if missing.Code != nethttp.StatusNotFound {
		t.Fatalf("missing ride: %d", missing.Code)
	}

	// a driver not bound to the ride is a stranger too, pending or not
	if w := f.do(t, nethttp.MethodGet, "/api/rides/"+string(created.ID), "driver-token", nil); w.Code != nethttp.StatusNotFound {
		t.Fatalf("unbound driver get: %d", w.Code)
	}
}

func TestListRides_LimitKeepsNewestFirst(t *testing.T) {
	f := newFixture(t)

	var ids []string
	for i := 0; i < 3; i++ {
		w := f.do(t, nethttp.MethodPost, "/api/rides", "rider-token", createRideBody())
		if w.Code != nethttp.StatusCreated {
			t.Fatalf("create %d: %d", i, w.Code)
		}
		var created ride.Ride
		if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, string(created.ID))
	}

	w := f.do(t, nethttp.MethodGet, "/api/rides?limit=2", "rider-token", nil)
	if w.Code != nethttp.StatusOK {
		t.Fatalf("list: %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Rides []ride.Ride `json:"rides"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Rides) != 2 {
		t.Fatalf("len = %d, want 2", len(resp.Rides))
	}
	if string(resp.Rides[0].ID) != ids[2] || string(resp.Rides[1].ID) != ids[1] {
		t.Fatalf("order = [%s %s], want the two most recent [%s %s]",
			resp.Rides[0].ID, resp.Rides[1].ID, ids[2], ids[1])
	}
}

func TestDriverEndpoints_RejectPassengerRole(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, nethttp.MethodGet, "/api/driver/rides/pending", "rider-token", nil)
	if w.Code != nethttp.StatusForbidden {
		t.Fatalf("got %d, want 403", w.Code)
	}
}

func TestAdminEndpoints_RejectDriverRole(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, nethttp.MethodGet, "/api/admin/dispatch", "driver-token", nil)
	if w.Code != nethttp.StatusForbidden {
		t.Fatalf("got %d, want 403", w.Code)
	}
}

func TestAdminZoneLifecycle(t *testing.T) {
	f := newFixture(t)

	body := map[string]any{
		"name":        "Geneva Airport - Center",
		"origin":      map[string]any{"point": map[string]float64{"lat": 46.2381, "lng": 6.1090}, "radius_km": 3},
		"destination": map[string]any{"point": map[string]float64{"lat": 46.2044, "lng": 6.1432}, "radius_km": 2},
		"prices":      map[string]float64{"eco": 35, "berline": 50},
	}
	w := f.do(t, nethttp.MethodPost, "/api/admin/zones", "admin-token", body)
	if w.Code != nethttp.StatusCreated {
		t.Fatalf("create zone: %d body=%s", w.Code, w.Body.String())
	}
	var z zone.Zone
	if err := json.Unmarshal(w.Body.Bytes(), &z); err != nil {
		t.Fatal(err)
	}

	// a zone price now wins over the metered tariff
	quote := f.do(t, nethttp.MethodPost, "/api/pricing/quote", "", map[string]any{
		"vehicle_class_id": "eco",
		"pickup":           map[string]float64{"lat": 46.2381, "lng": 6.1090},
		"destination":      map[string]float64{"lat": 46.2044, "lng": 6.1432},
		"distance_km":      8,
		"passengers":       2,
	})
	var bd pricing.PriceBreakdown
	if err := json.Unmarshal(quote.Body.Bytes(), &bd); err != nil {
		t.Fatal(err)
	}
	if bd.Method != pricing.MethodFixedZone || bd.FinalPrice != 35 {
		t.Fatalf("zone quote: method=%s price=%.2f", bd.Method, bd.FinalPrice)
	}

	if w := f.do(t, nethttp.MethodDelete, "/api/admin/zones/"+string(z.ID), "admin-token", nil); w.Code != nethttp.StatusOK {
		t.Fatalf("deactivate: %d", w.Code)
	}
}

func TestAdminAssign(t *testing.T) {
	f := newFixture(t)

	d, err := f.fleet.RegisterDriver(context.Background(), "drv-login", "Jean")
	if err != nil {
		t.Fatal(err)
	}
	w := f.do(t, nethttp.MethodPost, "/api/rides", "rider-token", createRideBody())
	var created ride.Ride
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	w = f.do(t, nethttp.MethodPost, "/api/admin/rides/"+string(created.ID)+"/assign", "admin-token",
		map[string]string{"driver_id": string(d.ID)})
	if w.Code != nethttp.StatusOK {
		t.Fatalf("assign: %d body=%s", w.Code, w.Body.String())
	}
	var assigned ride.Ride
	if err := json.Unmarshal(w.Body.Bytes(), &assigned); err != nil {
		t.Fatal(err)
	}
	if assigned.Status != ride.StatusAssigned {
		t.Fatalf("status = %s", assigned.Status)
	}

	got, _ := f.fleet.Driver(context.Background(), d.ID)
	if got.Status != fleet.DriverBusy {
		t.Fatalf("driver status = %s, want busy", got.Status)
	}
}
