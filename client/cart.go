package client

import (
	"restaurant-pos-api/models"
	"restaurant-pos-api/services"
)

// CartLine is one menu item in the cart with the price seen when it was added
type CartLine struct {
	MenuItemID uint    `json:"menuItemId"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
}

// Cart is an immutable value; Reduce returns a new cart
type Cart struct {
	Lines         []CartLine           `json:"lines"`
	TableNumber   string               `json:"tableNumber,omitempty"`
	CustomerName  string               `json:"customerName,omitempty"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod,omitempty"`
}

type ActionKind int

const (
	AddItem ActionKind = iota
	RemoveItem
	SetQuantity
	ClearCart
	SetTable
	SetCustomer
	SetPaymentMethod
)

type Action struct {
	Kind     ActionKind
	Item     models.MenuItem
	ItemID   uint
	Quantity int
	Value    string
}

func Add(item models.MenuItem) Action { return Action{Kind: AddItem, Item: item} }
func Remove(id uint) Action { return Action{Kind: RemoveItem, ItemID: id} }
func Quantity(id uint, qty int) Action { return Action{Kind: SetQuantity, ItemID: id, Quantity: qty} }
func Clear() Action { return Action{Kind: ClearCart} }
func Table(number string) Action { return Action{Kind: SetTable, Value: number} }
func Customer(name string) Action { return Action{Kind: SetCustomer, Value: name} }
func Payment(m models.PaymentMethod) Action { return Action{Kind: SetPaymentMethod, Value: string(m)} }

// Reduce applies a to cart. Adding an item already in the cart bumps its
// quantity; a quantity below 1 removes the line.
func Reduce(cart Cart, a Action) Cart {
	next := cart
	next.Lines = append([]CartLine(nil), cart.Lines...)

	switch a.Kind {
	case AddItem:
		for i := range next.Lines {
			if next.Lines[i].MenuItemID == a.Item.ID {
				next.Lines[i].Quantity++
				return next
			}
		}
		next.Lines = append(next.Lines, CartLine{
			MenuItemID: a.Item.ID,
			Name:       a.Item.Name,
			Price:      a.Item.Price,
			Quantity:   1,
		})
	case RemoveItem:
		next.Lines = without(next.Lines, a.ItemID)
	case SetQuantity:
		if a.Quantity < 1 {
			next.Lines = without(next.Lines, a.ItemID)
			break
		}
		for i := range next.Lines {
			if next.Lines[i].MenuItemID == a.ItemID {
				next.Lines[i].Quantity = a.Quantity
			}
		}
	case ClearCart:
		return Cart{}
	case SetTable:
		next.TableNumber = a.Value
	case SetCustomer:
		next.CustomerName = a.Value
	case SetPaymentMethod:
		next.PaymentMethod = models.PaymentMethod(a.Value)
	}
	return next
}

func without(lines []CartLine, id uint) []CartLine {
	out := lines[:0]
	for _, l := range lines {
		if l.MenuItemID != id {
			out = append(out, l)
		}
	}
	return out
}

func (c Cart) Empty() bool { return len(c.Lines) == 0 }

func (c Cart) Count() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// Total is the same rounded sum the server computes
func (c Cart) Total() float64 {
	lines := make([]models.OrderItem, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, models.OrderItem{MenuItemID: l.MenuItemID, Quantity: l.Quantity, Price: l.Price})
	}
	return services.OrderTotal(lines)
}

// OrderRequest builds the create payload; prices go along as the line snapshot
func (c Cart) OrderRequest() services.CreateOrderInput {
	items := make([]services.LineInput, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, services.LineInput{MenuItem: l.MenuItemID, Quantity: l.Quantity, Price: l.Price})
	}
	return services.CreateOrderInput{
		Items:         items,
		PaymentMethod: c.PaymentMethod,
		TableNumber:   c.TableNumber,
		CustomerName:  c.CustomerName,
	}
}
