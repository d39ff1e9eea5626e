package handlers

import (
	"strconv"
	"strings"

	"github.com/Dhoini/customer-service/internal/domain"
	"github.com/gin-gonic/gin"
)

// customerBody изменяемые поля клиента в теле запроса и ответа
type customerBody struct {
	LastName      string               `json:"lastName"`
	Email         string               `json:"email"`
	Category      int                  `json:"category"`
	Newsletter    bool                 `json:"newsletterOptIn"`
	BirthDate     *domain.Date         `json:"birthDate,omitempty"`
	Revenue       *domain.Revenue      `json:"revenue,omitempty"`
	Homepage      string               `json:"homepage,omitempty"`
	Gender        domain.Gender        `json:"gender,omitempty"`
	MaritalStatus domain.MaritalStatus `json:"maritalStatus,omitempty"`
	Interests     []domain.Interest    `json:"interests,omitempty"`
	Address       domain.Address       `json:"address"`
}

func (b customerBody) toDomain() domain.Customer {
	return domain.Customer{
		LastName:      b.LastName,
		Email:         b.Email,
		Category:      b.Category,
		Newsletter:    b.Newsletter,
		BirthDate:     b.BirthDate,
		Revenue:       b.Revenue,
		Homepage:      b.Homepage,
		Gender:        b.Gender,
		MaritalStatus: b.MaritalStatus,
		Interests:     b.Interests,
		Address:       b.Address,
	}
}

func bodyFromDomain(c domain.Customer) customerBody {
	return customerBody{
		LastName:      c.LastName,
		Email:         c.Email,
		Category:      c.Category,
		Newsletter:    c.Newsletter,
		BirthDate:     c.BirthDate,
		Revenue:       c.Revenue,
		Homepage:      c.Homepage,
		Gender:        c.Gender,
		MaritalStatus: c.MaritalStatus,
		Interests:     c.Interests,
		Address:       c.Address,
	}
}

// createCustomerRequest тело POST: клиент и данные его аккаунта
type createCustomerRequest struct {
	Customer customerBody           `json:"customer"`
	Account  *domain.AccountRequest `json:"account"`
}

type link struct {
	Href string `json:"href"`
}

type customerModel struct {
	customerBody
	Username string          `json:"username,omitempty"`
	Links    map[string]link `json:"_links"`
}

type customerListModel struct {
	Embedded struct {
		Customers []customerModel `json:"customers"`
	} `json:"_embedded"`
	Links map[string]link `json:"_links"`
}

// baseURL адрес коллекции клиентов с учетом прокси
func baseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host + customersPath
}

// toModel клиент со ссылками; полный набор только для одиночного ответа
func toModel(cu domain.Customer, base string, full bool) customerModel {
	self := base + "/" + cu.ID.String()
	links := map[string]link{"self": {Href: self}}
	if full {
		links["list"] = link{Href: base}
		links["add"] = link{Href: base}
		links["update"] = link{Href: self}
		links["remove"] = link{Href: self}
	}
	return customerModel{
		customerBody: bodyFromDomain(cu),
		Username:     cu.Username,
		Links:        links,
	}
}

func toListModel(customers []domain.Customer, base string) customerListModel {
	var out customerListModel
	out.Embedded.Customers = make([]customerModel, 0, len(customers))
	for _, cu := range customers {
		out.Embedded.Customers = append(out.Embedded.Customers, toModel(cu, base, false))
	}
	out.Links = map[string]link{"self": {Href: base}}
	return out
}

// etag форматирует версию как сильный ETag
func etag(version int) string {
	return `"` + strconv.Itoa(version) + `"`
}

// versionFromHeader извлекает версию из If-Match / If-None-Match
func versionFromHeader(value string) string {
	v := strings.TrimSpace(value)
	v = strings.TrimPrefix(v, "W/")
	return strings.Trim(v, `"`)
}
