package transport

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Victorious-hub/Open-Graph/internal/db"
	"github.com/Victorious-hub/Open-Graph/internal/models"
	"github.com/Victorious-hub/Open-Graph/internal/service"
)

func (s *HTTPServer) CollectionCreate(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	req := models.CollectionReq{}
	if err := s.BindAndValidate(c, &req); err != nil {
		return err
	}

	coll, err := s.collections.CreateCollection(c.UserContext(), user.ID, service.CollectionInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(collectionResp(coll))
}

func (s *HTTPServer) CollectionList(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	page, err := GetPage(c)
	if err != nil {
		return err
	}

	colls, total, err := s.collections.ListCollections(c.UserContext(), user.ID, page)
	if err != nil {
		return err
	}

	resp := make([]models.CollectionResp, len(colls))
	for i := range colls {
		resp[i] = collectionResp(&colls[i])
	}
	return c.JSON(listResp(page, total, resp))
}

func (s *HTTPServer) CollectionGet(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	coll, err := s.collections.GetCollection(c.UserContext(), user.ID, id)
	if err != nil {
		return err
	}
	return c.JSON(collectionResp(coll))
}

func (s *HTTPServer) CollectionUpdate(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	req := models.CollectionReq{}
	if err := s.BindAndValidate(c, &req); err != nil {
		return err
	}

	coll, err := s.collections.UpdateCollection(c.UserContext(), user.ID, id, service.CollectionInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(collectionResp(coll))
}

func (s *HTTPServer) CollectionDelete(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	if err := s.collections.DeleteCollection(c.UserContext(), user.ID, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *HTTPServer) LinkCollectionCreate(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	req := models.LinkCollectionReq{}
	if err := s.BindAndValidate(c, &req); err != nil {
		return err
	}

	m, err := s.collections.CreateLinkCollection(c.UserContext(), user.ID, req.LinkID, req.CollectionID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(linkCollectionResp(m))
}

func (s *HTTPServer) LinkCollectionList(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	page, err := GetPage(c)
	if err != nil {
		return err
	}

	memberships, total, err := s.collections.ListLinkCollections(c.UserContext(), user.ID, page)
	if err != nil {
		return err
	}

	resp := make([]models.LinkCollectionResp, len(memberships))
	for i := range memberships {
		resp[i] = linkCollectionResp(&memberships[i])
	}
	return c.JSON(listResp(page, total, resp))
}

func collectionResp(coll *db.Collection) models.CollectionResp {
	return models.CollectionResp{
		ID:          coll.ID,
		Name:        coll.Name,
		Description: coll.Description,
		CreatedAt:   coll.CreatedAt,
		UpdatedAt:   coll.UpdatedAt,
	}
}

func linkCollectionResp(m *db.LinkCollection) models.LinkCollectionResp {
	return models.LinkCollectionResp{
		ID:           m.ID,
		LinkID:       m.LinkID,
		CollectionID: m.CollectionID,
	}
}
