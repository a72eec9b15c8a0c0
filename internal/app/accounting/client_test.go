package accounting

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinbrio/internal/app/model"
	"kinbrio/internal/pkg/errs"
)

func TestCanSync(t *testing.T) {
	full := model.AkauntingOptions{AkauntingDomain: "https://a.example/api", UserName: "u", UserPass: "p"}
	assert.True(t, CanSync(full))

	for _, mutate := range []func(*model.AkauntingOptions){
		func(o *model.AkauntingOptions) { o.AkauntingDomain = "" },
		func(o *model.AkauntingOptions) { o.UserName = "" },
		func(o *model.AkauntingOptions) { o.UserPass = "" },
	} {
		o := full
		mutate(&o)
		assert.False(t, CanSync(o))
	}
}

func TestClientWithoutCredentialsMakesNoCalls(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), model.AkauntingOptions{AkauntingDomain: srv.URL, UserName: "u"})
	ctx := context.Background()

	companies, err := c.ListCompanies(ctx)
	require.NoError(t, err)
	assert.Empty(t, companies.Data)

	item, err := c.GetItem(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, Item{}, item.Data)

	_, err = c.ListItems(ctx)
	require.NoError(t, err)
	_, err = c.ListInvoices(ctx)
	require.NoError(t, err)
	_, err = c.ListCustomers(ctx)
	require.NoError(t, err)
	_, err = c.GetCustomer(ctx, "7")
	require.NoError(t, err)
	_, err = c.ListUsers(ctx)
	require.NoError(t, err)

	assert.Zero(t, hits.Load())
}

func TestClientRequests(t *testing.T) {
	type seen struct {
		auth, company, uri string
	}
	var got []seen
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, seen{r.Header.Get("Authorization"), r.Header.Get("X-Company"), r.URL.RequestURI()})
		switch r.URL.Path {
		case "/api/companies":
			_, _ = w.Write([]byte(`{"data":[{"id":3,"name":"Acme","email":"hi@acme.test"}],"links":{"first":"x","last":"y","prev":null,"next":null},"meta":{"current_page":1,"total":1}}`))
		case "/api/items/42":
			_, _ = w.Write([]byte(`{"data":{"id":42,"name":"Consulting","description":"hourly","sale_price":120.75,"type":"Service"}}`))
		case "/api/contacts/7":
			_, _ = w.Write([]byte(`{"data":{"id":7,"name":"Globex","address":"1 Main St","website":null}}`))
		case "/api/documents":
			_, _ = w.Write([]byte(`{"data":[{"id":1,"contact_id":7,"amount":10},{"id":2,"contact_id":null},{"id":3,"contact_id":8}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), model.AkauntingOptions{
		AkauntingDomain:    srv.URL + "/api",
		UserName:           "ana@acme.test",
		UserPass:           "s3cret?>",
		AkauntingCompanyID: "3",
	})
	ctx := context.Background()

	companies, err := c.ListCompanies(ctx)
	require.NoError(t, err)
	require.Len(t, companies.Data, 1)
	assert.Equal(t, ID("3"), companies.Data[0].ID)
	assert.Equal(t, "Acme", companies.Data[0].Name)

	item, err := c.GetItem(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, ID("42"), item.Data.ID)
	assert.Equal(t, 120.75, item.Data.SalePrice)
	assert.Equal(t, "Service", item.Data.Type)

	customer, err := c.GetCustomer(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "Globex", customer.Data.Name)
	assert.Equal(t, "", customer.Data.Website)

	invoices, err := c.ListInvoices(ctx)
	require.NoError(t, err)
	matched := invoices.ForContact("7")
	require.Len(t, matched, 1)
	assert.Equal(t, ID("1"), matched[0].ID)

	require.Len(t, got, 4)
	// Standard alphabet: "ana@acme.test:s3cret?>" encodes with a '/' that URL-safe would turn into '_'.
	assert.Equal(t, "Basic YW5hQGFjbWUudGVzdDpzM2NyZXQ/Pg==", got[0].auth)
	assert.Equal(t, "/api/companies", got[0].uri)
	assert.Equal(t, "/api/contacts/7?search=type%3Acustomer", got[2].uri)
	assert.Equal(t, "3", got[2].company)
	assert.Equal(t, "", got[0].company)
	assert.Equal(t, "/api/documents?search=type:invoice&page=1&limit=50", got[3].uri)
}

func TestClientErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/unauthorized"):
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Unauthenticated.","status_code":401}`))
		default:
			// 200 with a body that does not fit the expected shape.
			_, _ = w.Write([]byte(`{"message":"The given data was invalid.","status_code":"422","data":"nope"}`))
		}
	}))
	defer srv.Close()

	opts := model.AkauntingOptions{AkauntingDomain: srv.URL + "/unauthorized", UserName: "u", UserPass: "p"}
	_, err := NewClient(srv.Client(), opts).ListCompanies(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Unauthenticated.", apiErr.Message)
	assert.Equal(t, errs.KindUpstream, errs.KindOf(err))

	opts.AkauntingDomain = srv.URL
	_, err = NewClient(srv.Client(), opts).ListItems(context.Background())
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "The given data was invalid.", apiErr.Message)
	assert.Equal(t, 422, apiErr.code())
}

func TestClientEscapesIDs(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), model.AkauntingOptions{AkauntingDomain: srv.URL, UserName: "u", UserPass: "p"})
	_, err := c.GetItem(context.Background(), "../users")
	require.NoError(t, err)
	_, err = c.GetCustomer(context.Background(), "7?search=type:vendor")
	require.NoError(t, err)

	assert.Equal(t, []string{"/items/..%2Fusers", "/contacts/7%3Fsearch=type:vendor"}, paths)
}
