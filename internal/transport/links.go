package transport

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Victorious-hub/Open-Graph/internal/db"
	"github.com/Victorious-hub/Open-Graph/internal/models"
	"github.com/Victorious-hub/Open-Graph/internal/service"
)

func (s *HTTPServer) LinkCreate(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	req := models.LinkReq{}
	if err := s.BindAndValidate(c, &req); err != nil {
		return err
	}

	link, err := s.links.CreateLink(c.UserContext(), user.ID, req.LinkURL)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(linkResp(link))
}

func (s *HTTPServer) LinkList(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	page, err := GetPage(c)
	if err != nil {
		return err
	}
	filter := service.LinkFilter{Page: page}

	if v := c.Query("type"); v != "" {
		t := models.LinkType(v)
		if !t.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "invalid query param 'type'")
		}
		filter.Type = &t
	}
	if v := c.Query("collection_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid query param 'collection_id'")
		}
		filter.CollectionID = &id
	}

	links, total, err := s.links.ListLinks(c.UserContext(), user.ID, filter)
	if err != nil {
		return err
	}

	resp := make([]models.LinkResp, len(links))
	for i := range links {
		resp[i] = linkResp(&links[i])
	}
	return c.JSON(listResp(page, total, resp))
}

func (s *HTTPServer) LinkGet(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	link, err := s.links.GetLink(c.UserContext(), user.ID, id)
	if err != nil {
		return err
	}

	return c.JSON(linkResp(link))
}

func (s *HTTPServer) LinkUpdate(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	req := models.LinkUpdateReq{}
	if err := s.BindAndValidate(c, &req); err != nil {
		return err
	}

	link, err := s.links.UpdateLink(c.UserContext(), user.ID, id, service.LinkUpdate{
		LinkURL:     &req.LinkURL,
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		LinkType:    models.LinkType(req.LinkType),
	})
	if err != nil {
		return err
	}

	return c.JSON(linkResp(link))
}

func (s *HTTPServer) LinkDelete(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	if err := s.links.DeleteLink(c.UserContext(), user.ID, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetPage reads limit and offset query params. Missing values fall back to
// the service defaults; limit is capped.
func GetPage(c *fiber.Ctx) (service.Page, error) {
	page := service.Page{Limit: service.DefaultLimit}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return page, fiber.NewError(fiber.StatusBadRequest, "invalid query param 'limit'")
		}
		page.Limit = n
	}
	if page.Limit > service.MaxLimit {
		page.Limit = service.MaxLimit
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return page, fiber.NewError(fiber.StatusBadRequest, "invalid query param 'offset'")
		}
		page.Offset = n
	}
	return page, nil
}

func listResp(page service.Page, total int64, results interface{}) models.ListResp {
	return models.ListResp{
		Limit:   page.Limit,
		Offset:  page.Offset,
		Count:   total,
		Results: results,
	}
}

func linkResp(l *db.Link) models.LinkResp {
	return models.LinkResp{
		ID:          l.ID,
		LinkURL:     l.LinkURL,
		Title:       l.Title,
		Description: l.Description,
		Image:       l.Image,
		LinkType:    l.LinkType,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}
