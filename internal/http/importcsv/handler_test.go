package importcsv_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/invoicer/internal/catalog"
	"github.com/MrJamesThe3rd/invoicer/internal/http/importcsv"
	"github.com/MrJamesThe3rd/invoicer/internal/importer"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

func multipartBody(t *testing.T, fields map[string]string, file string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}

	if file != "" {
		fw, err := mw.CreateFormFile("file", "items.csv")
		require.NoError(t, err)

		_, err = fw.Write([]byte(file))
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func TestHandler_ImportCSV(t *testing.T) {
	rate := 6.0

	csv := "Description,Quantity,Unit price,Tax %,Discount\n" +
		"Hosting VPS,2,10,,10%\n" +
		"Domain,1,15,23,\n"

	type testCase struct {
		name       string
		fields     map[string]string
		file       string
		setupMock  func(m *catalog.MockRepository)
		wantStatus int
		check      func(t *testing.T, body []byte)
	}

	tests := []testCase{
		{
			name:   "AppliesCatalogAndTotals",
			fields: map[string]string{"currency": "EUR"},
			file:   csv,
			setupMock: func(m *catalog.MockRepository) {
				m.EXPECT().FindMatch(gomock.Any(), "Hosting VPS").
					Return(&catalog.Entry{RawPattern: "VPS", Description: "Virtual server", TaxRatePercent: &rate}, nil)
				m.EXPECT().FindMatch(gomock.Any(), "Domain").Return(nil, nil)
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var got struct {
					Imported int                `json:"imported"`
					Items    []invoice.ItemForm `json:"items"`
					Totals   map[string]float64 `json:"totals"`
					Currency string             `json:"currency"`
				}
				require.NoError(t, json.Unmarshal(body, &got))

				assert.Equal(t, 2, got.Imported)
				require.Len(t, got.Items, 2)
				assert.Equal(t, "Virtual server", got.Items[0].Description)
				assert.Equal(t, invoice.Number(6), got.Items[0].TaxRatePercent)
				assert.Equal(t, "EUR", got.Currency)

				// 2×10 −10% = 18, +6% = 19.08; 15 +23% = 18.45
				assert.Equal(t, 35.0, got.Totals["items_subtotal"])
				assert.Equal(t, 33.0, got.Totals["items_net_subtotal"])
				assert.Equal(t, 37.53, got.Totals["grand_total"])
			},
		},
		{
			name: "EchoedItemsReproduceTotals",
			file: "Description,Quantity,Unit price,Tax %,Discount\nWidget,1,1000,6.125,\n",
			setupMock: func(m *catalog.MockRepository) {
				m.EXPECT().FindMatch(gomock.Any(), "Widget").Return(nil, nil)
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var got struct {
					Items  []invoice.ItemForm `json:"items"`
					Totals map[string]float64 `json:"totals"`
				}
				require.NoError(t, json.Unmarshal(body, &got))

				require.Len(t, got.Items, 1)
				assert.Equal(t, invoice.Number(6.125), got.Items[0].TaxRatePercent)
				assert.Equal(t, 1061.25, got.Totals["grand_total"])

				var items []invoice.Item
				for _, f := range got.Items {
					items = append(items, f.Item())
				}

				again := invoice.NewService(nil).Preview(invoice.Draft{Items: items})
				assert.Equal(t, got.Totals["grand_total"], invoice.NewBlock(again.Totals).GrandTotal)
			},
		},
		{
			name:       "MissingFile",
			fields:     map[string]string{"currency": "EUR"},
			setupMock:  func(m *catalog.MockRepository) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "UnknownFormat",
			fields:     map[string]string{"format": "ofx"},
			file:       csv,
			setupMock:  func(m *catalog.MockRepository) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "UnrecognisedLayout",
			file:       "foo,bar\n1,2\n",
			setupMock:  func(m *catalog.MockRepository) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := catalog.NewMockRepository(ctrl)
			tt.setupMock(repo)

			h := importcsv.NewHandler(importer.NewService(), invoice.NewService(nil), catalog.NewService(repo))

			r := chi.NewRouter()
			r.Route("/import", h.Routes)

			body, contentType := multipartBody(t, tt.fields, tt.file)
			req := httptest.NewRequest(http.MethodPost, "/import/", body)
			req.Header.Set("Content-Type", contentType)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.check != nil {
				tt.check(t, rec.Body.Bytes())
			}
		})
	}
}
