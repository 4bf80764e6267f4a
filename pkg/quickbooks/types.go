package quickbooks

// Entity shapes are trimmed to the fields this integration reads. The API
// returns far more; unknown fields are ignored on decode.

type Vendor struct {
	ID               string     `json:"Id"`
	DisplayName      string     `json:"DisplayName"`
	PrimaryEmailAddr *EmailAddr `json:"PrimaryEmailAddr,omitempty"`
}

type EmailAddr struct {
	Address string `json:"Address"`
}

type Account struct {
	ID          string `json:"Id"`
	Name        string `json:"Name"`
	AcctNum     string `json:"AcctNum"`
	AccountType string `json:"AccountType"`
}

type Class struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
}

type Bill struct {
	ID        string `json:"Id"`
	DocNumber string `json:"DocNumber"`
}

// BillCreate is the request body for creating a bill with a single
// account-based expense line.
type BillCreate struct {
	VendorRef   Ref        `json:"VendorRef"`
	TxnDate     string     `json:"TxnDate,omitempty"`
	Line        []BillLine `json:"Line"`
	CurrencyRef Ref        `json:"CurrencyRef"`
	DocNumber   string     `json:"DocNumber"`
}

type BillLine struct {
	DetailType  string         `json:"DetailType"`
	Amount      string         `json:"Amount"`
	Description string         `json:"Description,omitempty"`
	Detail      BillLineDetail `json:"AccountBasedExpenseLineDetail"`
}

type BillLineDetail struct {
	AccountRef Ref `json:"AccountRef"`
	ClassRef   Ref `json:"ClassRef"`
}

type Ref struct {
	Value string `json:"value"`
}

type vendorQueryResponse struct {
	QueryResponse struct {
		Vendor []Vendor `json:"Vendor"`
	} `json:"QueryResponse"`
}

type accountQueryResponse struct {
	QueryResponse struct {
		Account []Account `json:"Account"`
	} `json:"QueryResponse"`
}

type classQueryResponse struct {
	QueryResponse struct {
		Class []Class `json:"Class"`
	} `json:"QueryResponse"`
}

type billQueryResponse struct {
	QueryResponse struct {
		Bill []Bill `json:"Bill"`
	} `json:"QueryResponse"`
}

type vendorEnvelope struct {
	Vendor Vendor `json:"Vendor"`
}

type billEnvelope struct {
	Bill Bill `json:"Bill"`
}
