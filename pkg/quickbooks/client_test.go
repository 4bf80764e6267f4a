package quickbooks

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "9341452", "tok_abc")
}

func TestQueryVendorsByName(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok_abc" {
			t.Errorf("missing bearer token, got %q", got)
		}
		if r.URL.Path != "/9341452/query" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query().Get("query")
		if q != "SELECT * FROM Vendor WHERE DisplayName = 'Ada O\\'Brien'" {
			t.Errorf("unexpected query %q", q)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"QueryResponse":{"Vendor":[{"Id":"77","DisplayName":"Ada O'Brien"}]}}`)
	})

	vendors, err := c.QueryVendorsByName(context.Background(), "Ada O'Brien")
	if err != nil {
		t.Fatal(err)
	}
	if len(vendors) != 1 || vendors[0].ID != "77" {
		t.Fatalf("unexpected vendors %+v", vendors)
	}
}

func TestQueryEmptyResultIsNotError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"QueryResponse":{}}`)
	})
	vendors, err := c.QueryVendorsByName(context.Background(), "Nobody")
	if err != nil {
		t.Fatal(err)
	}
	if len(vendors) != 0 {
		t.Fatalf("expected no vendors, got %+v", vendors)
	}
}

func TestCreateBill(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/9341452/bill" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		for _, want := range []string{`"DocNumber":"000124"`, `"Amount":"45.00"`, `"DetailType":"AccountBasedExpenseLineDetail"`} {
			if !strings.Contains(string(body), want) {
				t.Errorf("bill body missing %s: %s", want, body)
			}
		}
		io.WriteString(w, `{"Bill":{"Id":"188","DocNumber":"000124"}}`)
	})

	bill, err := c.CreateBill(context.Background(), BillCreate{
		VendorRef:   Ref{Value: "77"},
		CurrencyRef: Ref{Value: "CAD"},
		DocNumber:   "000124",
		Line: []BillLine{{
			DetailType:  "AccountBasedExpenseLineDetail",
			Amount:      "45.00",
			Description: "Pizza for judges",
			Detail:      BillLineDetail{AccountRef: Ref{Value: "31"}, ClassRef: Ref{Value: "5"}},
		}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if bill.ID != "188" {
		t.Fatalf("unexpected bill %+v", bill)
	}
}

func TestUploadAttachmentMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/9341452/upload" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		meta := r.MultipartForm.File["file_metadata_01"]
		file := r.MultipartForm.File["file_content_01"]
		if len(meta) != 1 || len(file) != 1 {
			t.Fatalf("expected metadata and content parts, got %v", r.MultipartForm.File)
		}
		mf, _ := meta[0].Open()
		metaBody, _ := io.ReadAll(mf)
		if !strings.Contains(string(metaBody), `"value":"188"`) {
			t.Errorf("metadata does not reference bill: %s", metaBody)
		}
		if file[0].Filename != "receipt.pdf" {
			t.Errorf("unexpected filename %q", file[0].Filename)
		}
		io.WriteString(w, `{"AttachableResponse":[{}]}`)
	})

	err := c.UploadAttachment(context.Background(), "188", "receipt.pdf", "application/pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatal(err)
	}
}

func TestErrorStatusSurfacesBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		io.WriteString(w, `{"Fault":{"type":"AUTHENTICATION"}}`)
	})
	_, err := c.QueryExpenseAccounts(context.Background())
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected 401 error, got %v", err)
	}
}

func TestNonJSONSuccessIsError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html>maintenance</html>`)
	})
	_, err := c.QueryBillsByDocNumberDesc(context.Background())
	if err == nil || !strings.Contains(err.Error(), "invalid JSON") {
		t.Fatalf("expected invalid JSON error, got %v", err)
	}
}
