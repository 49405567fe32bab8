package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/springzlabs/springz-backend/internal/catalog"
	"github.com/springzlabs/springz-backend/pkg/pagination"
)

type stubCatalogService struct {
	categories []catalog.CategoryDTO
	updated    *catalog.CategoryDTO
	updatedID  uuid.UUID
	lastUpdate catalog.UpdateCategoryInput
}

func (s *stubCatalogService) ListCategories(ctx context.Context) ([]catalog.CategoryDTO, error) {
	return nil, nil
}

func (s *stubCatalogService) AdminListCategories(ctx context.Context) ([]catalog.CategoryDTO, error) {
	return s.categories, nil
}

func (s *stubCatalogService) CreateCategory(ctx context.Context, input catalog.CreateCategoryInput) (*catalog.CategoryDTO, error) {
	return &catalog.CategoryDTO{Name: input.Name}, nil
}

func (s *stubCatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, input catalog.UpdateCategoryInput) (*catalog.CategoryDTO, error) {
	s.updatedID = id
	s.lastUpdate = input
	return s.updated, nil
}

func (s *stubCatalogService) ListProducts(ctx context.Context, filter catalog.ListFilter, params pagination.Params) (*pagination.Page[catalog.ProductDTO], error) {
	return nil, nil
}

func (s *stubCatalogService) GetProductBySlug(ctx context.Context, slug string) (*catalog.ProductDTO, error) {
	return nil, nil
}

func (s *stubCatalogService) AdminListProducts(ctx context.Context, filter catalog.ListFilter, params pagination.Params) (*pagination.Page[catalog.ProductDTO], error) {
	return nil, nil
}

func (s *stubCatalogService) CreateProduct(ctx context.Context, input catalog.CreateProductInput) (*catalog.ProductDTO, error) {
	return nil, nil
}

func (s *stubCatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input catalog.UpdateProductInput) (*catalog.ProductDTO, error) {
	return nil, nil
}

func (s *stubCatalogService) UpdateVariant(ctx context.Context, productID, variantID uuid.UUID, input catalog.UpdateVariantInput) (*catalog.ProductDTO, error) {
	return nil, nil
}

func patchCategoryRequest(categoryID, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/categories/"+categoryID, strings.NewReader(body))
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("categoryId", categoryID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestAdminCategoryUpdatePassesPayload(t *testing.T) {
	categoryID := uuid.New()
	svc := &stubCatalogService{updated: &catalog.CategoryDTO{ID: categoryID, Slug: "sports-nutrition"}}
	handler := AdminCategoryUpdate(svc, nil)

	rec := httptest.NewRecorder()
	handler(rec, patchCategoryRequest(categoryID.String(), `{"name":"Sports Nutrition"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, categoryID, svc.updatedID)
	require.NotNil(t, svc.lastUpdate.Name)
	require.Equal(t, "Sports Nutrition", *svc.lastUpdate.Name)
}

func TestAdminCategoryUpdateRejectsBadID(t *testing.T) {
	svc := &stubCatalogService{}
	handler := AdminCategoryUpdate(svc, nil)

	rec := httptest.NewRecorder()
	handler(rec, patchCategoryRequest("not-a-uuid", `{"name":"Sports Nutrition"}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminCategoriesListIncludesInactive(t *testing.T) {
	svc := &stubCatalogService{categories: []catalog.CategoryDTO{
		{Name: "Protein", IsActive: true},
		{Name: "Discontinued", IsActive: false},
	}}
	handler := AdminCategoriesList(svc, nil)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/categories", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Discontinued")
}
