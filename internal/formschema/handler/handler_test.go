package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fekuna/omnipos-marketplace-service/internal/category/categorytest"
	categoryUC "github.com/fekuna/omnipos-marketplace-service/internal/category/usecase"
	"github.com/fekuna/omnipos-marketplace-service/internal/formschema/formschematest"
	"github.com/fekuna/omnipos-marketplace-service/internal/formschema/usecase"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/response"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/rpc"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func newHandlers(t *testing.T) (*FormSchemaHandler, *FormSchemaGRPCHandler) {
	t.Helper()
	cats := categorytest.NewMemoryRepository()
	cats.Add("e", "ELECTRONICS", "", 1)
	cats.Add("p", "PHONES", "e", 1)
	cats.Add("l", "LAPTOPS", "e", 2)

	schemas := formschematest.NewMemoryRepository(cats)
	schemas.Put("p", true,
		model.FieldDefinition{Name: "brand", Label: "Brand", Type: model.FieldText, Required: true, Order: 1},
		model.FieldDefinition{Name: "storage", Label: "Storage", Type: model.FieldNumber, Order: 2},
	)

	uc := usecase.NewFormSchemaUseCase(schemas, categoryUC.NewCategoryUseCase(cats, 5, logger.NewNop()), logger.NewNop())
	return NewFormSchemaHandler(uc, logger.NewNop()), NewFormSchemaGRPCHandler(uc, logger.NewNop())
}

func router(h *FormSchemaHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/categories/with-forms", h.ListWithForms)
	r.Get("/form/{code}", h.Get)
	r.Post("/form/{code}/validate", h.Validate)
	r.Put("/admin/categories/{code}/schema", h.Replace)
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, &buf))

	var out map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestGetForm(t *testing.T) {
	h, _ := newHandlers(t)
	r := router(h)

	w, body := do(t, r, http.MethodGet, "/form/PHONES", nil)
	require.Equal(t, http.StatusOK, w.Code)
	schema := body["form_schema"].(map[string]interface{})
	assert.Equal(t, "PHONES", schema["category_code"])
	fields := schema["fields"].([]interface{})
	require.Len(t, fields, 2)
	assert.Equal(t, "brand", fields[0].(map[string]interface{})["field_name"])

	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/form/ELECTRONICS", http.StatusBadRequest, "NOT_LEAF_CATEGORY"},
		{"/form/LAPTOPS", http.StatusBadRequest, "SCHEMA_NOT_CONFIGURED"},
		{"/form/NOPE", http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w, body := do(t, r, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, body["res_status"])
		})
	}
}

func TestValidateForm(t *testing.T) {
	h, _ := newHandlers(t)
	r := router(h)

	w, body := do(t, r, http.MethodPost, "/form/PHONES/validate", map[string]interface{}{
		"data": map[string]interface{}{"brand": "Acme", "storage": 128},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["valid"])
	assert.Equal(t, float64(128), body["data"].(map[string]interface{})["storage"])

	w, _ = do(t, r, http.MethodPost, "/form/PHONES/validate", map[string]interface{}{
		"data": map[string]interface{}{"storage": "lots"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	var errBody response.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errBody))
	assert.Equal(t, "VALIDATION_ERROR", errBody.ResStatus)
	assert.Equal(t, map[string]string{
		"brand":   "Brand is required",
		"storage": "Storage must be a number",
	}, errBody.Errors)
}

func TestReplaceThenList(t *testing.T) {
	h, _ := newHandlers(t)
	r := router(h)

	w, _ := do(t, r, http.MethodPut, "/admin/categories/LAPTOPS/schema", map[string]interface{}{
		"fields": []map[string]interface{}{
			{"field_name": "ram", "field_label": "RAM", "field_type": "number", "is_required": true},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, body := do(t, r, http.MethodGet, "/categories/with-forms", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["categories"], 2)

	w, body = do(t, r, http.MethodPut, "/admin/categories/LAPTOPS/schema", map[string]interface{}{
		"fields": []map[string]interface{}{{"field_name": "x", "field_type": "slider"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", body["res_status"])
}

func dialSellerPortal(t *testing.T, srv SellerPortalServiceServer) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	RegisterSellerPortalServiceServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) { return lis.Dial() }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestGRPCSellerPortal(t *testing.T) {
	_, g := newHandlers(t)
	conn := dialSellerPortal(t, g)
	ctx := context.Background()

	req, _ := structpb.NewStruct(map[string]interface{}{"category_code": "PHONES"})
	out, err := rpc.Invoke(ctx, conn, SellerPortalServiceName, "GetFormSchema", req)
	require.NoError(t, err)
	fields := out.GetFields()["form_schema"].GetStructValue().GetFields()["fields"].GetListValue().GetValues()
	assert.Len(t, fields, 2)

	leafless, _ := structpb.NewStruct(map[string]interface{}{"category_code": "ELECTRONICS"})
	_, err = rpc.Invoke(ctx, conn, SellerPortalServiceName, "GetFormSchema", leafless)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	sub, _ := structpb.NewStruct(map[string]interface{}{
		"category_code": "PHONES",
		"data":          map[string]interface{}{"brand": "Acme", "storage": 64.0},
	})
	out, err = rpc.Invoke(ctx, conn, SellerPortalServiceName, "ValidateSubmission", sub)
	require.NoError(t, err)
	assert.True(t, out.GetFields()["valid"].GetBoolValue())
	assert.Equal(t, 64.0, out.GetFields()["data"].GetStructValue().GetFields()["storage"].GetNumberValue())

	bad, _ := structpb.NewStruct(map[string]interface{}{"category_code": "PHONES", "data": map[string]interface{}{}})
	_, err = rpc.Invoke(ctx, conn, SellerPortalServiceName, "ValidateSubmission", bad)
	st := status.Convert(err)
	require.Equal(t, codes.InvalidArgument, st.Code())
	require.Len(t, st.Details(), 1)
	br, ok := st.Details()[0].(*errdetails.BadRequest)
	require.True(t, ok)
	require.Len(t, br.GetFieldViolations(), 1)
	assert.Equal(t, "brand", br.GetFieldViolations()[0].GetField())
}
