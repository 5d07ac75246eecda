package memory

import "github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"

func discount(v float64) *float64 { return &v }

// NewDemoGateway returns a gateway holding the same demo catalog the Postgres
// seed migration installs.
func NewDemoGateway() *Gateway {
	g := NewGateway()

	electronics := g.AddCategory(entity.Category{Name: "Electronics", Icon: "laptop"})
	fashion := g.AddCategory(entity.Category{Name: "Fashion", Icon: "shirt"})
	home := g.AddCategory(entity.Category{Name: "Home", Icon: "home"})
	sports := g.AddCategory(entity.Category{Name: "Sports", Icon: "football"})

	for _, p := range []entity.Product{
		{Name: "Wireless Headphones", Description: "Over-ear noise cancelling headphones", Price: 129.99, CategoryID: electronics.ID, Stock: 25, ImageURL: "https://images.example.com/headphones.jpg", IsFlashSale: true, DiscountPercentage: discount(20)},
		{Name: "Smart Watch", Description: "Fitness tracking smart watch", Price: 199.00, CategoryID: electronics.ID, Stock: 10, ImageURL: "https://images.example.com/watch.jpg"},
		{Name: "Denim Jacket", Description: "Classic blue denim jacket", Price: 59.90, CategoryID: fashion.ID, Stock: 40, ImageURL: "https://images.example.com/jacket.jpg", IsFlashSale: true, DiscountPercentage: discount(35)},
		{Name: "Ceramic Mug Set", Description: "Set of four stoneware mugs", Price: 24.50, CategoryID: home.ID, Stock: 60, ImageURL: "https://images.example.com/mugs.jpg"},
		{Name: "Yoga Mat", Description: "Non-slip 6mm yoga mat", Price: 29.99, CategoryID: sports.ID, Stock: 0, ImageURL: "https://images.example.com/yoga.jpg"},
	} {
		g.AddProduct(p)
	}
	return g
}
