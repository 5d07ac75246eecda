package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

func TestGateway_DecrementStockIsConditional(t *testing.T) {
	ctx := context.Background()
	g := NewGateway()
	p := g.AddProduct(entity.Product{Name: "A", Price: 10, Stock: 2})

	require.NoError(t, g.DecrementStock(ctx, p.ID, 2))
	assert.ErrorIs(t, g.DecrementStock(ctx, p.ID, 1), entity.ErrInsufficientStock)

	got, err := g.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)

	require.NoError(t, g.IncrementStock(ctx, p.ID, 3))
	got, _ = g.GetProduct(ctx, p.ID)
	assert.Equal(t, 3, got.Stock)

	assert.ErrorIs(t, g.DecrementStock(ctx, 999, 1), entity.ErrNotFound)
}

func TestGateway_UpsertCartLineLastWriteWins(t *testing.T) {
	ctx := context.Background()
	g := NewGateway()
	p := g.AddProduct(entity.Product{Name: "A", Price: 10, Stock: 5})

	first := &entity.CartLine{UserID: "u1", ProductID: p.ID, Quantity: 1}
	require.NoError(t, g.UpsertCartLine(ctx, first))
	second := &entity.CartLine{UserID: "u1", ProductID: p.ID, Quantity: 4}
	require.NoError(t, g.UpsertCartLine(ctx, second))

	assert.Equal(t, first.ID, second.ID)

	lines, err := g.ListCartLines(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 4, lines[0].Quantity)
	require.NotNil(t, lines[0].Product)
	assert.Equal(t, "A", lines[0].Product.Name)
}

func TestGateway_FavoriteUniqueness(t *testing.T) {
	ctx := context.Background()
	g := NewGateway()
	p := g.AddProduct(entity.Product{Name: "A"})

	require.NoError(t, g.InsertFavorite(ctx, &entity.Favorite{UserID: "u1", ProductID: p.ID}))
	assert.ErrorIs(t, g.InsertFavorite(ctx, &entity.Favorite{UserID: "u1", ProductID: p.ID}), entity.ErrAlreadyFavorited)
	require.NoError(t, g.InsertFavorite(ctx, &entity.Favorite{UserID: "u2", ProductID: p.ID}))

	require.NoError(t, g.DeleteFavorite(ctx, "u1", p.ID))
	_, err := g.GetFavorite(ctx, "u1", p.ID)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestGateway_ListAndSearchProducts(t *testing.T) {
	ctx := context.Background()
	g := NewGateway()
	c := g.AddCategory(entity.Category{Name: "Home"})
	g.AddProduct(entity.Product{Name: "Mug", Description: "stoneware", CategoryID: c.ID})
	g.AddProduct(entity.Product{Name: "Lamp", Description: "desk lamp", IsFlashSale: true})
	g.AddProduct(entity.Product{Name: "Bowl", Description: "Stoneware bowl", CategoryID: c.ID})

	all, err := g.ListProducts(ctx, entity.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Bowl", all[0].Name)

	byCat, _ := g.ListProducts(ctx, entity.ProductFilter{CategoryID: c.ID})
	require.Len(t, byCat, 2)
	require.NotNil(t, byCat[0].Category)
	assert.Equal(t, "Home", byCat[0].Category.Name)

	flash, _ := g.ListProducts(ctx, entity.ProductFilter{FlashSaleOnly: true})
	require.Len(t, flash, 1)
	assert.Equal(t, "Lamp", flash[0].Name)

	found, err := g.SearchProducts(ctx, "STONEWARE")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Bowl", found[0].Name)
	assert.Equal(t, "Mug", found[1].Name)
}

func TestGateway_Orders(t *testing.T) {
	ctx := context.Background()
	g := NewGateway()
	p := g.AddProduct(entity.Product{Name: "A", Price: 10, Stock: 5})

	o := &entity.Order{UserID: "u1", Total: 20, Status: entity.StatusProcessing}
	require.NoError(t, g.InsertOrder(ctx, o))
	require.NoError(t, g.InsertOrderLines(ctx, []entity.OrderLine{{OrderID: o.ID, ProductID: p.ID, Quantity: 2, Price: 10}}))

	got, err := g.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 20.0, got.Items[0].Subtotal())

	assert.ErrorIs(t, g.InsertOrderLines(ctx, []entity.OrderLine{{OrderID: 999, ProductID: p.ID, Quantity: 1}}), entity.ErrNotFound)
	assert.ErrorIs(t, g.UpdateOrderStatus(ctx, o.ID, "shipped"), entity.ErrInvalidInput)

	require.NoError(t, g.UpdateOrderStatus(ctx, o.ID, entity.StatusCancelled))
	require.NoError(t, g.DeleteOrderLines(ctx, o.ID))
	got, _ = g.GetOrder(ctx, o.ID)
	assert.Equal(t, entity.StatusCancelled, got.Status)
	assert.Empty(t, got.Items)

	orders, err := g.ListOrders(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestGateway_UserEmailCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	g := NewGateway()

	require.NoError(t, g.InsertUser(ctx, &entity.User{ID: "u1", Email: "ana@example.com"}))
	assert.ErrorIs(t, g.InsertUser(ctx, &entity.User{ID: "u2", Email: "ANA@example.com"}), entity.ErrEmailTaken)

	u, err := g.GetUserByEmail(ctx, "Ana@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
}

func TestNewDemoGateway(t *testing.T) {
	g := NewDemoGateway()

	cats, err := g.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, cats, 4)
	assert.Equal(t, "Electronics", cats[0].Name)

	products, _ := g.ListProducts(context.Background(), entity.ProductFilter{})
	assert.Len(t, products, 5)
}
