// Package tui is the interactive shop: the product list on the left, the cart on the
// right, toasts underneath.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/notify"
	"github.com/shopspring/decimal"
)

const opTimeout = 30 * time.Second

type Cart interface {
	Fetch(ctx context.Context) error
	Add(ctx context.Context, productID string, quantity int) error
	Remove(ctx context.Context, itemID string) error
	IncreaseQuantity(id string)
	DecreaseQuantity(id string)
	Visible() []domain.CartItem
	Subtotal() decimal.Decimal
}

type Catalog interface {
	Products(ctx context.Context) ([]domain.Product, error)
}

type Checkout interface {
	PlaceOrder(ctx context.Context, form checkout.Form) (*domain.OrderConfirmation, error)
}

type Orders interface {
	Loading() bool
	Error() string
}

type Feed interface {
	Drain() []notify.Notification
}

type Deps struct {
	Cart     Cart
	Catalog  Catalog
	Checkout Checkout
	Orders   Orders
	Feed     Feed
	// User is the signed-in user, nil when browsing anonymously.
	User  *domain.User
	Glyph string
}

type pane int

const (
	paneProducts pane = iota
	paneCart
)

type Model struct {
	deps   Deps
	styles Styles

	products []domain.Product
	items    []domain.CartItem
	subtotal decimal.Decimal

	focus    pane
	product  int
	item     int
	busy     int
	status   string
	toasts   []notify.Notification
	lastCart error
}

func New(deps Deps) Model {
	if deps.Glyph == "" {
		deps.Glyph = "₹"
	}
	// busy starts at one for the cart fetch issued by Init
	return Model{deps: deps, styles: DefaultStyles(), status: "Loading products...", busy: 1}
}

type productsLoaded struct {
	products []domain.Product
	err      error
}

// cartDone reports any remote cart operation; the cart is re-read from the store.
type cartDone struct{ err error }

type orderDone struct {
	confirmation *domain.OrderConfirmation
	err          error
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadProducts(), m.cartCmd(func(ctx context.Context) error { return m.deps.Cart.Fetch(ctx) }))
}

func (m Model) loadProducts() tea.Cmd {
	catalog := m.deps.Catalog
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		products, err := catalog.Products(ctx)
		return productsLoaded{products: products, err: err}
	}
}

func (m Model) cartCmd(op func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return cartDone{err: op(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case productsLoaded:
		if msg.err != nil {
			m.status = "Could not load products: " + msg.err.Error()
		} else {
			m.products = msg.products
			m.status = fmt.Sprintf("%d products", len(msg.products))
		}

	case cartDone:
		m.busy--
		m.lastCart = msg.err
		m.refreshCart()

	case orderDone:
		m.busy--
		m.refreshCart()
		if msg.err != nil {
			m.status = m.deps.Orders.Error()
		} else {
			m.status = "Order " + msg.confirmation.ID + " placed"
		}
	}

	m.drainToasts()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cart := m.deps.Cart
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "tab":
		if m.focus == paneProducts {
			m.focus = paneCart
		} else {
			m.focus = paneProducts
		}
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "enter", "a":
		if m.focus == paneProducts && m.product < len(m.products) {
			id := m.products[m.product].ID
			m.busy++
			return m, m.cartCmd(func(ctx context.Context) error { return cart.Add(ctx, id, 1) })
		}
	case "+", "=":
		if id, ok := m.selectedItem(); ok {
			cart.IncreaseQuantity(id)
			m.refreshCart()
		}
	case "-":
		if id, ok := m.selectedItem(); ok {
			cart.DecreaseQuantity(id)
			m.refreshCart()
		}
	case "d", "delete":
		if id, ok := m.selectedItem(); ok {
			m.busy++
			return m, m.cartCmd(func(ctx context.Context) error { return cart.Remove(ctx, id) })
		}
	case "r":
		m.busy++
		return m, tea.Batch(m.loadProducts(), m.cartCmd(cart.Fetch))
	case "c":
		return m.placeOrder()
	}
	m.drainToasts()
	return m, nil
}

func (m Model) placeOrder() (tea.Model, tea.Cmd) {
	if m.deps.Orders.Loading() {
		return m, nil
	}
	if m.deps.User == nil {
		m.status = "Sign in with `storefront login` to check out"
		return m, nil
	}
	if len(m.items) == 0 {
		m.status = "Your cart is empty"
		return m, nil
	}

	var form checkout.Form
	form.PrefillShipping(m.deps.User)
	co := m.deps.Checkout
	m.busy++
	m.status = "Placing order..."
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		confirmation, err := co.PlaceOrder(ctx, form)
		return orderDone{confirmation: confirmation, err: err}
	}
}

func (m *Model) move(delta int) {
	if m.focus == paneProducts {
		m.product = clamp(m.product+delta, len(m.products))
	} else {
		m.item = clamp(m.item+delta, len(m.items))
	}
}

func (m *Model) selectedItem() (string, bool) {
	if m.focus != paneCart || m.item >= len(m.items) {
		return "", false
	}
	return m.items[m.item].ID, true
}

func (m *Model) refreshCart() {
	m.items = m.deps.Cart.Visible()
	m.subtotal = m.deps.Cart.Subtotal()
	m.item = clamp(m.item, len(m.items))
}

func (m *Model) drainToasts() {
	if m.deps.Feed == nil {
		return
	}
	m.toasts = append(m.toasts, m.deps.Feed.Drain()...)
	if len(m.toasts) > 3 {
		m.toasts = m.toasts[len(m.toasts)-3:]
	}
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (m Model) View() string {
	s := m.styles
	var b strings.Builder

	who := "browsing as guest"
	if m.deps.User != nil {
		who = "signed in as " + m.deps.User.Name
	}
	b.WriteString(s.Header.Render("Organic Fertilizer Store") + " " + s.Muted.Render(who))
	b.WriteString("\n\n")

	left := m.renderProducts()
	right := m.renderCart()
	leftStyle, rightStyle := s.Active, s.Pane
	if m.focus == paneCart {
		leftStyle, rightStyle = s.Pane, s.Active
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, leftStyle.Render(left), rightStyle.Render(right)))
	b.WriteString("\n")

	for _, t := range m.toasts {
		b.WriteString(s.Levels[t.Level].Render("• "+t.Message) + "\n")
	}
	status := m.status
	if m.busy > 0 {
		status += " (working...)"
	}
	b.WriteString(s.Muted.Render(status))
	b.WriteString(s.Footer.Render("\ntab switch pane · ↑/↓ move · a add · +/- quantity · d remove · c checkout · r refresh · q quit"))
	return b.String()
}

func (m Model) renderProducts() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Products") + "\n")
	if len(m.products) == 0 {
		b.WriteString(m.styles.Muted.Render("nothing here yet"))
		return b.String()
	}
	for i, p := range m.products {
		line := fmt.Sprintf("%-28s %10s", p.Name, p.Price)
		if i == m.product && m.focus == paneProducts {
			line = m.styles.Selected.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) renderCart() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Cart") + "\n")
	if m.lastCart != nil {
		b.WriteString(m.styles.Levels[notify.LevelError].Render("cart unavailable") + "\n")
	}
	if len(m.items) == 0 {
		b.WriteString(m.styles.Muted.Render("your cart is empty"))
		return b.String()
	}
	for i, it := range m.items {
		line := fmt.Sprintf("%-24s %3d × %s", it.Name, it.Quantity, it.Price)
		if i == m.item && m.focus == paneCart {
			line = m.styles.Selected.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\nSubtotal: " + domain.FormatAmount(m.deps.Glyph, m.subtotal))
	return b.String()
}

// Run starts the program on the terminal and blocks until the user quits.
func Run(deps Deps) error {
	_, err := tea.NewProgram(New(deps), tea.WithAltScreen()).Run()
	return err
}
