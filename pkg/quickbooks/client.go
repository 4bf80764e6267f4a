// Package quickbooks is a minimal client for the accounting API surface this
// integration consumes: vendor, account, class and bill queries, bill
// creation and attachment upload. Authentication is a bearer token supplied
// by configuration; token refresh is handled outside this process.
package quickbooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
)

type Client struct {
	BaseURL     string
	CompanyID   string
	AccessToken string
	HTTP        *http.Client
}

func New(baseURL, companyID, accessToken string) *Client {
	return &Client{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		CompanyID:   companyID,
		AccessToken: accessToken,
		HTTP:        &http.Client{},
	}
}

// QueryVendorsByName returns every vendor whose display name matches exactly.
func (c *Client) QueryVendorsByName(ctx context.Context, displayName string) ([]Vendor, error) {
	var out vendorQueryResponse
	q := fmt.Sprintf("SELECT * FROM Vendor WHERE DisplayName = '%s'", escapeQueryLiteral(displayName))
	if err := c.query(ctx, q, &out); err != nil {
		return nil, err
	}
	return out.QueryResponse.Vendor, nil
}

// CreateVendor registers a new vendor with a display name and email address.
func (c *Client) CreateVendor(ctx context.Context, displayName, email string) (Vendor, error) {
	var out vendorEnvelope
	body := Vendor{
		DisplayName:      displayName,
		PrimaryEmailAddr: &EmailAddr{Address: email},
	}
	if err := c.postJSON(ctx, "/vendor", body, &out); err != nil {
		return Vendor{}, err
	}
	return out.Vendor, nil
}

// QueryExpenseAccounts returns all accounts of type Expense. The API cannot
// filter on AcctNum, so callers filter by account number themselves.
func (c *Client) QueryExpenseAccounts(ctx context.Context) ([]Account, error) {
	var out accountQueryResponse
	if err := c.query(ctx, "SELECT * FROM Account WHERE AccountType = 'Expense'", &out); err != nil {
		return nil, err
	}
	return out.QueryResponse.Account, nil
}

// QueryClassesByName returns every class with the given name.
func (c *Client) QueryClassesByName(ctx context.Context, name string) ([]Class, error) {
	var out classQueryResponse
	q := fmt.Sprintf("SELECT * FROM Class WHERE Name = '%s'", escapeQueryLiteral(name))
	if err := c.query(ctx, q, &out); err != nil {
		return nil, err
	}
	return out.QueryResponse.Class, nil
}

// QueryBillsByDocNumberDesc returns bills ordered by document number,
// newest numbering first.
func (c *Client) QueryBillsByDocNumberDesc(ctx context.Context) ([]Bill, error) {
	var out billQueryResponse
	if err := c.query(ctx, "SELECT * FROM Bill ORDER BY DocNumber DESC", &out); err != nil {
		return nil, err
	}
	return out.QueryResponse.Bill, nil
}

// CreateBill creates the bill and returns it with its assigned id.
func (c *Client) CreateBill(ctx context.Context, bill BillCreate) (Bill, error) {
	var out billEnvelope
	if err := c.postJSON(ctx, "/bill", bill, &out); err != nil {
		return Bill{}, err
	}
	return out.Bill, nil
}

// UploadAttachment attaches a file to the bill via the multipart upload
// endpoint: a JSON metadata part referencing the bill, then the file bytes.
func (c *Client) UploadAttachment(ctx context.Context, billID, filename, contentType string, content []byte) error {
	metadata := map[string]any{
		"AttachableRef": []map[string]any{
			{"EntityRef": map[string]string{"type": "Bill", "value": billID}},
		},
		"FileName":    filename,
		"ContentType": contentType,
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Disposition", `form-data; name="file_metadata_01"; filename="metadata.json"`)
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := mw.CreatePart(metaHeader)
	if err != nil {
		return err
	}
	if _, err := metaPart.Write(metadataJSON); err != nil {
		return err
	}

	fileHeader := textproto.MIMEHeader{}
	fileHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file_content_01"; filename="%s"`, filename))
	fileHeader.Set("Content-Type", contentType)
	filePart, err := mw.CreatePart(fileHeader)
	if err != nil {
		return err
	}
	if _, err := filePart.Write(content); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.companyURL("/upload"), &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	var ignored json.RawMessage
	return c.do(req, &ignored)
}

func (c *Client) query(ctx context.Context, q string, dst any) error {
	u := c.companyURL("/query") + "?query=" + url.QueryEscape(q)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return c.do(req, dst)
}

func (c *Client) postJSON(ctx context.Context, path string, body, dst any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.companyURL(path), bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, dst)
}

func (c *Client) do(req *http.Request, dst any) error {
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("quickbooks: %s %s returned %d: %s", req.Method, req.URL.Path, resp.StatusCode, truncate(raw, 256))
	}
	// A non-JSON success body is an error, not opaque text.
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("quickbooks: %s %s returned invalid JSON: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func (c *Client) companyURL(path string) string {
	return c.BaseURL + "/" + c.CompanyID + path
}

// escapeQueryLiteral backslash-escapes single quotes inside a query string
// literal.
func escapeQueryLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
