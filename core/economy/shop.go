package economy

import "sort"

// ShopItem is a catalog entry. Items are owned at most once per user.
type ShopItem struct {
	ID          string
	Name        string
	Description string
	Price       float64
}

// ResaleRate is the share of the price paid back when an item is sold.
const ResaleRate = 0.7

var shopItems = map[string]ShopItem{
	"rock": {
		ID:          "rock",
		Name:        "Rock",
		Description: "A perfectly ordinary rock. Does nothing.",
		Price:       10,
	},
	"plushie": {
		ID:          "plushie",
		Name:        "Plushie",
		Description: "Soft, round and judging you quietly.",
		Price:       300,
	},
	"yacht": {
		ID:          "yacht",
		Name:        "Yacht",
		Description: "For when your balance needs to be somebody else's problem.",
		Price:       10000,
	},
}

// FindShopItem looks an item up by its exact id.
func FindShopItem(id string) (ShopItem, bool) {
	item, ok := shopItems[id]
	return item, ok
}

// ShopItems returns the catalog ordered by price.
func ShopItems() []ShopItem {
	items := make([]ShopItem, 0, len(shopItems))
	for _, item := range shopItems {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Price != items[j].Price {
			return items[i].Price < items[j].Price
		}
		return items[i].ID < items[j].ID
	})
	return items
}

// ResalePrice is what the bot pays back for item.
func (item ShopItem) ResalePrice() float64 {
	return RoundCurrency(item.Price * ResaleRate)
}
