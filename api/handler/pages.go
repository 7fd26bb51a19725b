package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/storefront/api/transport"
	"github.com/fastygo/storefront/api/view"
	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/internal/session"
	"github.com/fastygo/storefront/pkg/httpcontext"
	"github.com/fastygo/storefront/repository"
	adminUC "github.com/fastygo/storefront/usecase/admin"
	catalogUC "github.com/fastygo/storefront/usecase/catalog"
	ordersUC "github.com/fastygo/storefront/usecase/orders"
)

const (
	mainProductLimit = 24
	shippingLimit    = 50

	flashCreated  = "created"
	flashBuffered = "buffered"
)

var flashMessages = map[string]string{
	flashCreated:  "상품이 등록되었습니다.",
	flashBuffered: "상품이 접수되었습니다. 저장소 연결이 복구되면 반영됩니다.",
}

// PageDeps groups the collaborators of the HTML pages.
type PageDeps struct {
	Views    *view.Renderer
	Catalog  *catalogUC.UseCase
	Orders   *ordersUC.UseCase
	Admin    *adminUC.UseCase
	Lister   adminUC.UserLister
	Observer PageObserver

	// ProductCreated runs after each accepted product, stored or buffered.
	ProductCreated func()
}

// PageHandler renders the storefront and admin pages. Every method has the
// session.PageHandler shape so the gate decides access before it runs.
type PageHandler struct {
	baseHandler
	pages   pageRenderer
	catalog *catalogUC.UseCase
	orders  *ordersUC.UseCase
	admin   *adminUC.UseCase
	lister  adminUC.UserLister
	created func()
}

func NewPageHandler(deps PageDeps, adapter *httpcontext.Adapter, logger *zap.Logger) *PageHandler {
	base := newBaseHandler(adapter, logger)
	return &PageHandler{
		baseHandler: base,
		pages:       pageRenderer{views: deps.Views, observer: deps.Observer, logger: base.logger},
		catalog:     deps.Catalog,
		orders:      deps.Orders,
		admin:       deps.Admin,
		lister:      deps.Lister,
		created:     deps.ProductCreated,
	}
}

// Main is the public landing page; user is nil for anonymous visitors.
func (h *PageHandler) Main(ctx *fasthttp.RequestCtx, user *domain.User) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	listings, err := h.catalog.ListProducts(stdCtx, repository.ProductFilter{Limit: mainProductLimit})
	if err != nil {
		h.log(stdCtx).Error("failed to load products", zap.Error(err))
		listings = nil
	}
	h.pages.render(ctx, http.StatusOK, view.PageMain, view.Page{Title: "Storefront", User: user, Data: listings})
}

func (h *PageHandler) Profile(ctx *fasthttp.RequestCtx, user *domain.User) {
	h.pages.render(ctx, http.StatusOK, view.PageProfile, view.Page{Title: "내 정보", User: user})
}

func (h *PageHandler) Shipping(ctx *fasthttp.RequestCtx, user *domain.User) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	shipments, err := h.orders.Shipments(stdCtx, user, shippingLimit)
	if err != nil {
		h.log(stdCtx).Error("failed to load orders", zap.Error(err))
		h.pages.renderError(ctx, user, http.StatusInternalServerError, "주문 내역을 불러오지 못했습니다.")
		return
	}
	h.pages.render(ctx, http.StatusOK, view.PageShipping, view.Page{Title: "배송 조회", User: user, Data: shipments})
}

// RequireAdmin renders a 403 page for identities without the admin role.
func (h *PageHandler) RequireAdmin(next session.PageHandler) session.PageHandler {
	return func(ctx *fasthttp.RequestCtx, user *domain.User) {
		if !user.IsAdmin() {
			h.pages.render(ctx, http.StatusForbidden, view.PageForbidden, view.Page{Title: "403", User: user})
			return
		}
		next(ctx, user)
	}
}

func (h *PageHandler) NewProduct(ctx *fasthttp.RequestCtx, user *domain.User) {
	flash := flashMessages[string(ctx.QueryArgs().Peek("flash"))]
	h.pages.render(ctx, http.StatusOK, view.PageProductForm, view.Page{
		Title: "상품 등록",
		User:  user,
		Flash: flash,
		Data:  view.ProductForm{},
	})
}

func (h *PageHandler) CreateProduct(ctx *fasthttp.RequestCtx, user *domain.User) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	input := transport.ProductFormInput{
		Name:        string(ctx.FormValue("name")),
		Description: string(ctx.FormValue("description")),
		ImageURL:    string(ctx.FormValue("image_url")),
		Price:       string(ctx.FormValue("price")),
		SalePrice:   string(ctx.FormValue("sale_price")),
	}
	form := view.ProductForm{
		Name:        input.Name,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		Price:       input.Price,
		SalePrice:   input.SalePrice,
	}

	product, err := input.Product()
	if err == nil {
		product, err = h.catalog.CreateProduct(stdCtx, user, product)
	}
	if err != nil {
		status, _ := mapError(err)
		if status == http.StatusInternalServerError {
			h.log(stdCtx).Error("product creation failed", zap.Error(err))
			form.Error = "상품을 저장하지 못했습니다."
		} else {
			form.Error = domainMessage(err)
		}
		h.pages.render(ctx, status, view.PageProductForm, view.Page{Title: "상품 등록", User: user, Data: form})
		return
	}

	if h.created != nil {
		h.created()
	}
	flash := flashCreated
	if catalogUC.Pending(product) {
		flash = flashBuffered
	}
	h.pages.redirect(ctx, "/admin/products/new?flash="+flash)
}

// Users renders the identity provider's user list, or the failure message
// when the provider call failed.
func (h *PageHandler) Users(ctx *fasthttp.RequestCtx, user *domain.User) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var table view.UsersTable
	switch result := h.admin.GetAllUsers(stdCtx, h.lister).(type) {
	case adminUC.UserList:
		table.Users = result
	case adminUC.ListFailure:
		table.Users = result.Data
		table.Failure = result.Message
	}
	h.pages.render(ctx, http.StatusOK, view.PageUsers, view.Page{Title: "회원 관리", User: user, Data: table})
}
