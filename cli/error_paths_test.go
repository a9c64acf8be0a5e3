package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"catalogdash/domain"
)

func TestCreate_ValidationMakesNoNetworkCall(t *testing.T) {
	gw := &fakeGateway{products: sampleProducts()}
	useCatalog(t, gw)

	_, errOut, err := run("create", "--price", "0", "--category", "home")
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(errOut, "title: Title is required") || !strings.Contains(errOut, "price: Price must be greater than 0") {
		t.Fatalf("missing field messages:\n%s", errOut)
	}
	if strings.Contains(errOut, "category:") {
		t.Fatalf("category was valid:\n%s", errOut)
	}
	if gw.createCalls != 0 {
		t.Fatalf("gateway should not be called, got %d calls", gw.createCalls)
	}
}

func TestCreate_InfinitePriceRejectedLocally(t *testing.T) {
	gw := &fakeGateway{products: sampleProducts()}
	useCatalog(t, gw)

	_, errOut, err := run("create", "--title", "Lamp", "--price", "Inf", "--category", "home")
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(errOut, "price: Price must be a finite number") {
		t.Fatalf("unexpected stderr:\n%s", errOut)
	}
	if gw.createCalls != 0 {
		t.Fatalf("gateway should not be called, got %d calls", gw.createCalls)
	}
	if st := catalog.State(); st.Status.String() != "idle" || st.Error != "" {
		t.Fatalf("local input error should not touch the store: %s %q", st.Status, st.Error)
	}
}

func TestCreate_GatewayErrorShownOnCategory(t *testing.T) {
	gw := &fakeGateway{createErr: domain.NewGatewayError("create", 400, "title already exists", nil)}
	useCatalog(t, gw)

	_, errOut, err := run("create", "--title", "Lamp", "--price", "3", "--category", "home")
	if err == nil {
		t.Fatalf("expected create error")
	}
	if !strings.Contains(errOut, "category: title already exists") {
		t.Fatalf("unexpected stderr:\n%s", errOut)
	}
	if n := strings.Count(errOut, "title already exists"); n != 1 {
		t.Fatalf("server message printed %d times:\n%s", n, errOut)
	}
	if !strings.Contains(errOut, "Error: product not created") {
		t.Fatalf("missing summary line:\n%s", errOut)
	}
	if st := catalog.State(); st.Status.String() != "failed" || st.Error != "title already exists" {
		t.Fatalf("unexpected state: %s %q", st.Status, st.Error)
	}
}

func TestList_FetchFailureSuggestsRefresh(t *testing.T) {
	useCatalog(t, &fakeGateway{fetchErr: domain.NewGatewayError("fetch", 500, "Failed to fetch products", nil)})

	_, errOut, err := run("list")
	if err == nil {
		t.Fatalf("expected fetch error")
	}
	if !strings.Contains(errOut, "Error: Failed to fetch products") || !strings.Contains(errOut, "Run `refresh` to try again.") {
		t.Fatalf("unexpected stderr:\n%s", errOut)
	}
}

func TestRefresh_FailureKeepsPreviousResults(t *testing.T) {
	gw := &fakeGateway{products: sampleProducts()}
	useCatalog(t, gw)

	if _, _, err := run("list"); err != nil {
		t.Fatalf("list failed: %v", err)
	}

	gw.fetchErr = errors.New("connection reset by peer")
	if _, _, err := run("refresh"); err == nil {
		t.Fatalf("expected refresh error")
	}

	out, errOut, err := run("list")
	if err != nil {
		t.Fatalf("list should still work on stale data: %v", err)
	}
	if !strings.Contains(errOut, "last refresh failed: connection reset by peer") {
		t.Fatalf("missing warning:\n%s", errOut)
	}
	if !strings.HasPrefix(out, "Showing 3 products") {
		t.Fatalf("previous results not shown:\n%s", out)
	}
}

func TestList_UnknownSort(t *testing.T) {
	useCatalog(t, &fakeGateway{products: sampleProducts()})

	_, _, err := run("list", "--sort-by", "popularity")
	if err == nil || !strings.Contains(err.Error(), "unknown sort option") {
		t.Fatalf("expected sort validation error, got %v", err)
	}
}

func TestShow_InvalidID(t *testing.T) {
	useCatalog(t, &fakeGateway{products: sampleProducts()})

	if _, _, err := run("show", "abc"); err == nil {
		t.Fatalf("expected error for non-numeric id")
	}
}

func TestImport_UnsupportedFormat(t *testing.T) {
	useCatalog(t, &fakeGateway{})
	path := filepath.Join(t.TempDir(), "bad_import.json")
	if err := os.WriteFile(path, []byte("this is not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := run("import", "--file", path); err == nil {
		t.Fatalf("expected error for unsupported import format, got nil")
	}
}

func TestImport_NDJSON(t *testing.T) {
	gw := &fakeGateway{}
	useCatalog(t, gw)
	path := filepath.Join(t.TempDir(), "import.ndjson")
	content := "{\"title\":\"N1\",\"price\":1,\"category\":\"misc\"}\n" +
		"{\"title\":\"N2\",\"price\":2,\"category\":\"misc\"}\n" +
		"{\"title\":\"\",\"price\":3,\"category\":\"misc\"}\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := run("import", "--file", path, "--workers", "2")
	if err == nil || !strings.Contains(err.Error(), "record 3") {
		t.Fatalf("expected record 3 to fail validation, got %v", err)
	}
	if !strings.Contains(out, "imported 2 of 3 products") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if gw.createCalls != 2 {
		t.Fatalf("expected 2 create calls, got %d", gw.createCalls)
	}
}

func TestExport_NoFileFlag(t *testing.T) {
	useCatalog(t, &fakeGateway{products: sampleProducts()})

	if _, _, err := run("export"); err == nil {
		t.Fatalf("expected error when export --file missing, got nil")
	}
}

func TestConfigErrorsSurface(t *testing.T) {
	t.Cleanup(resetCLI)
	catalog = nil

	_, errOut, err := run("--gateway", "ftp", "status")
	if err == nil {
		t.Fatalf("expected error for unknown gateway kind, got nil")
	}
	if !strings.Contains(errOut, "gateway must be one of [http file]") {
		t.Fatalf("unexpected stderr:\n%s", errOut)
	}
	if catalog != nil {
		t.Fatalf("catalog should not be built from an invalid config")
	}
}
