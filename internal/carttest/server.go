// Package carttest is an in-process stand-in for the shop's cart endpoints.
// It keeps a session cart per cookie, checks the anti-forgery token and
// answers AJAX calls with the same JSON the real views send.
package carttest

import (
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	SessionCookie = "sessionid"
	TokenCookie   = "csrftoken"
	TokenHeader   = "X-CSRFToken"

	maxQuantity = 99
)

type Product struct {
	ID      string
	Name    string
	Price   float64
	InStock bool
}

type line struct {
	Quantity int
	Price    float64
}

type Server struct {
	mu       sync.Mutex
	products map[string]Product
	sessions map[string]map[string]*line

	posts atomic.Int64
	log   zerolog.Logger
}

func New(products []Product, log zerolog.Logger) *Server {
	s := &Server{
		products: make(map[string]Product, len(products)),
		sessions: make(map[string]map[string]*line),
		log:      log,
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

// Posts is the number of cart POSTs received, rejected ones included.
func (s *Server) Posts() int64 { return s.posts.Load() }

// Put seeds a session cart line directly.
func (s *Server) Put(session, productID string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.cartLocked(session)
	cart[productID] = &line{Quantity: qty, Price: s.products[productID].Price}
}

// Quantities returns a copy of a session's cart.
func (s *Server) Quantities(session string) map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]int{}
	for id, l := range s.sessions[session] {
		out[id] = l.Quantity
	}
	return out
}

func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(s.logger(), gin.Recovery())
	r.GET("/cart/", s.handleView)
	g := r.Group("/cart")
	g.Use(s.countPosts(), s.csrf())
	{
		g.POST("/add/:id/", s.handleAdd)
		g.POST("/remove/:id/", s.handleRemove)
		g.POST("/update/:id/", s.handleUpdate)
	}
	return r
}

func (s *Server) logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("fake cart request")
	}
}

func (s *Server) countPosts() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.posts.Add(1)
		c.Next()
	}
}

func (s *Server) csrf() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(TokenCookie)
		if err != nil || cookie == "" || cookie != c.GetHeader(TokenHeader) {
			c.Data(http.StatusForbidden, "text/html; charset=utf-8", []byte("<h1>403 Forbidden</h1><p>CSRF verification failed.</p>"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func isAJAX(c *gin.Context) bool {
	return c.GetHeader("X-Requested-With") == "XMLHttpRequest"
}

func notFound(c *gin.Context) {
	c.Data(http.StatusNotFound, "text/html; charset=utf-8", []byte("<h1>Not Found</h1>"))
}

// session returns the caller's session id, issuing one when missing.
func (s *Server) session(c *gin.Context) string {
	if id, err := c.Cookie(SessionCookie); err == nil && id != "" {
		return id
	}
	id := uuid.NewString()
	c.SetCookie(SessionCookie, id, 0, "/", "", false, true)
	return id
}

func (s *Server) cartLocked(session string) map[string]*line {
	cart, ok := s.sessions[session]
	if !ok {
		cart = make(map[string]*line)
		s.sessions[session] = cart
	}
	return cart
}

func totals(cart map[string]*line) (count int, total float64) {
	for _, l := range cart {
		count += l.Quantity
		total += l.Price * float64(l.Quantity)
	}
	return count, total
}

func (s *Server) handleView(c *gin.Context) {
	if _, err := c.Cookie(TokenCookie); err != nil {
		c.SetCookie(TokenCookie, uuid.NewString(), 0, "/", "", false, false)
	}
	sess := s.session(c)

	s.mu.Lock()
	cart := s.cartLocked(sess)
	type item struct {
		ProductID string  `json:"product_id"`
		Name      string  `json:"name"`
		Quantity  int     `json:"quantity"`
		Price     float64 `json:"price"`
	}
	items := make([]item, 0, len(cart))
	for id, l := range cart {
		items = append(items, item{ProductID: id, Name: s.products[id].Name, Quantity: l.Quantity, Price: l.Price})
	}
	count, total := totals(cart)
	s.mu.Unlock()

	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
	c.JSON(http.StatusOK, gin.H{
		"items":            items,
		"cart_items_count": count,
		"cart_total":       total,
	})
}

func (s *Server) handleAdd(c *gin.Context) {
	sess := s.session(c)
	p, ok := s.products[c.Param("id")]
	if !ok {
		notFound(c)
		return
	}
	if !p.InStock {
		if isAJAX(c) {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "Товар відсутній на складі"})
			return
		}
		c.Redirect(http.StatusFound, "/catalog/")
		return
	}
	qty := 1
	if raw, present := c.GetPostForm("quantity"); present {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", []byte("<h1>Server Error (500)</h1>"))
			return
		}
		qty = n
	}

	s.mu.Lock()
	cart := s.cartLocked(sess)
	l, exists := cart[p.ID]
	if !exists {
		l = &line{Price: p.Price}
		cart[p.ID] = l
	}
	l.Quantity += qty
	count, _ := totals(cart)
	s.mu.Unlock()

	if !isAJAX(c) {
		c.Redirect(http.StatusFound, "/cart/")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"message":          p.Name + " додано до кошика",
		"cart_items_count": count,
	})
}

func (s *Server) handleRemove(c *gin.Context) {
	sess := s.session(c)
	p, ok := s.products[c.Param("id")]
	if !ok {
		notFound(c)
		return
	}

	s.mu.Lock()
	cart := s.cartLocked(sess)
	delete(cart, p.ID)
	count, total := totals(cart)
	s.mu.Unlock()

	if !isAJAX(c) {
		c.Redirect(http.StatusFound, "/cart/")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"message":          p.Name + " видалено з кошика",
		"cart_items_count": count,
		"cart_total":       total,
	})
}

func (s *Server) handleUpdate(c *gin.Context) {
	sess := s.session(c)
	reject := func(msg string) {
		if isAJAX(c) {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": msg})
			return
		}
		c.Redirect(http.StatusFound, "/cart/")
	}

	qty, err := strconv.Atoi(c.DefaultPostForm("quantity", "1"))
	if err != nil {
		reject("Помилка обробки запиту")
		return
	}
	if qty < 1 || qty > maxQuantity {
		reject("Неправильна кількість")
		return
	}
	p, ok := s.products[c.Param("id")]
	if !ok {
		notFound(c)
		return
	}
	if !p.InStock {
		reject("Товар відсутній на складі")
		return
	}

	s.mu.Lock()
	cart := s.cartLocked(sess)
	if l, exists := cart[p.ID]; exists {
		l.Quantity = qty
	}
	count, total := totals(cart)
	s.mu.Unlock()

	if !isAJAX(c) {
		c.Redirect(http.StatusFound, "/cart/")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"message":          "Кількість оновлено",
		"cart_items_count": count,
		"cart_total":       total,
	})
}
