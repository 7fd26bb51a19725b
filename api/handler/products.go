package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/storefront/pkg/httpcontext"
	"github.com/fastygo/storefront/repository"
	catalogUC "github.com/fastygo/storefront/usecase/catalog"
)

const maxProductPage = 100

type ProductHandler struct {
	baseHandler
	uc *catalogUC.UseCase
}

func NewProductHandler(uc *catalogUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List products with display prices
// @Tags products
// @Param on_sale query bool false "only discounted products"
// @Param limit query int false "page size"
// @Param offset query int false "page offset"
// @Router /api/v1/products [get]
func (h *ProductHandler) List(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()
	filter := repository.ProductFilter{
		OnSaleOnly: args.GetBool("on_sale"),
		Limit:      args.GetUintOrZero("limit"),
		Offset:     args.GetUintOrZero("offset"),
	}
	if filter.Limit > maxProductPage {
		filter.Limit = maxProductPage
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	listings, err := h.uc.ListProducts(stdCtx, filter)
	if err != nil {
		h.log(stdCtx).Error("product list failed", zap.Error(err))
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, listings)
}
