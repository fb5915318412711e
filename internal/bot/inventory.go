package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/nalyk/shopbot/internal/models"
	"github.com/nalyk/shopbot/internal/navigation"
	"github.com/nalyk/shopbot/internal/repository"
)

const maxNodeNameLen = 100

// InventoryMenu is the inventory entry screen.
func (s *AdminService) InventoryMenu() (string, *tele.ReplyMarkup) {
	menu := &tele.ReplyMarkup{}

	browse := navigation.NewInventoryCallback(navigation.InvLevelBrowser, navigation.RootCategoryID)
	archived := browse
	archived.ShowArchived = true
	addCategory := navigation.NewInventoryCallback(navigation.InvLevelAction, navigation.RootCategoryID)
	addCategory.Action = navigation.ActionAddCategory
	quickAdd := navigation.NewInventoryCallback(navigation.InvLevelAction, navigation.RootCategoryID)
	quickAdd.Action = navigation.ActionAddItems
	quickAdd.AddType = navigation.AddTypeJSON

	menu.Inline(
		menu.Row(menu.Data("🗂 Browse tree", browse.Pack())),
		menu.Row(menu.Data("➕ Add root category", addCategory.Pack())),
		menu.Row(menu.Data("📥 Quick add items (JSON)", quickAdd.Pack())),
		menu.Row(menu.Data("🗃 Archived nodes", archived.Pack())),
		menu.Row(menu.Data("⬅️ Back", navigation.NewAdminMenuCallback(0).Pack())),
	)
	return "📦 Inventory management", menu
}

// CategoryBrowser renders one level of the tree: the children of the
// current node (or the roots), with per-scope filtering and pagination.
// A node that no longer exists drops the admin back to the root listing.
func (s *AdminService) CategoryBrowser(cb navigation.InventoryCallback) (string, *tele.ReplyMarkup, error) {
	atRoot := cb.CategoryID == navigation.RootCategoryID

	var current *models.Category
	if !atRoot {
		var err error
		current, err = s.categories.GetByID(cb.CategoryID)
		if errors.Is(err, repository.ErrNotFound) {
			root := cb
			root.CategoryID = navigation.RootCategoryID
			root.Page = 0
			text, menu, err := s.CategoryBrowser(root)
			return "⚠️ That node no longer exists.\n\n" + text, menu, err
		}
		if err != nil {
			return "", nil, err
		}
		if current.IsProduct {
			return s.ProductManagement(cb.BackTo(navigation.InvLevelProduct))
		}
	}

	var (
		children []models.Category
		err      error
	)
	if atRoot {
		children, err = s.categories.GetRootsFiltered(cb.Page, s.pageSize(), cb.ShowArchived)
	} else {
		children, err = s.categories.GetChildrenFiltered(cb.CategoryID, cb.Page, s.pageSize(), cb.ShowArchived)
	}
	if err != nil {
		return "", nil, err
	}

	crumb, err := s.breadcrumb(cb.CategoryID)
	if err != nil {
		return "", nil, err
	}

	var text strings.Builder
	text.WriteString(crumb)
	if cb.ShowArchived {
		text.WriteString("\n🗃 Archived nodes")
	}
	if len(children) == 0 {
		text.WriteString("\n\nNothing here yet.")
	}

	menu := &tele.ReplyMarkup{}
	var rows []tele.Row
	for _, child := range children {
		rows = append(rows, menu.Row(menu.Data(s.nodeLabel(&child), s.childTarget(cb, &child).Pack())))
	}

	if !cb.ShowArchived {
		addCategory := cb.BackTo(navigation.InvLevelAction)
		addCategory.Action = navigation.ActionAddCategory
		addProduct := cb.BackTo(navigation.InvLevelAction)
		addProduct.Action = navigation.ActionAddProduct
		rows = append(rows, menu.Row(
			menu.Data("➕ Category", addCategory.Pack()),
			menu.Data("➕ Product", addProduct.Pack()),
		))
		if !atRoot {
			del := cb.BackTo(navigation.InvLevelDeleteConfirm)
			del.Action = navigation.ActionDelete
			rows = append(rows, menu.Row(menu.Data("🗑 Delete this category", del.Pack())))
		}
	} else if !atRoot {
		reactivate := cb.BackTo(navigation.InvLevelAction)
		reactivate.Action = navigation.ActionReactivate
		rows = append(rows, menu.Row(menu.Data("♻️ Reactivate this category", reactivate.Pack())))
	}

	// toggling keeps the scope and page, only navigation resets the page
	toggle := cb
	toggle.ShowArchived = !cb.ShowArchived
	toggleLabel := "🗃 Show archived"
	if cb.ShowArchived {
		toggleLabel = "📂 Show active"
	}
	rows = append(rows, menu.Row(menu.Data(toggleLabel, toggle.Pack())))

	rows = append(rows, navigation.PaginationRow(menu, cb, func() (int64, error) {
		var total int64
		var err error
		if atRoot {
			total, err = s.categories.CountRootsFiltered(cb.ShowArchived)
		} else {
			total, err = s.categories.CountChildrenFiltered(cb.CategoryID, cb.ShowArchived)
		}
		if err != nil {
			return 0, err
		}
		return navigation.PageCount(total, s.pageSize()), nil
	}, backButton(menu, "⬅️ Back", s.browserBackTarget(cb, current))))

	menu.Inline(rows...)
	return text.String(), menu, nil
}

func (s *AdminService) nodeLabel(node *models.Category) string {
	var label string
	if node.IsProduct {
		qty, err := s.categories.GetAvailableQty(node.ID)
		if err != nil {
			qty = 0
		}
		label = fmt.Sprintf("📄 %s · %d pcs", node.Name, qty)
		if node.Price.Valid {
			label += " · " + s.money(node.Price.Float64)
		}
	} else {
		children, err := s.categories.CountChildren(node.ID)
		if err != nil {
			children = 0
		}
		label = fmt.Sprintf("📁 %s (%d)", node.Name, children)
	}
	if !node.IsActive {
		label = "🗃 " + label
	}
	return label
}

func (s *AdminService) childTarget(cb navigation.InventoryCallback, child *models.Category) navigation.InventoryCallback {
	target := cb
	target.CategoryID = child.ID
	target.Page = 0
	if child.IsProduct {
		target.Level = navigation.InvLevelProduct
	} else {
		target.Level = navigation.InvLevelBrowser
	}
	return target
}

func (s *AdminService) browserBackTarget(cb navigation.InventoryCallback, current *models.Category) string {
	if current == nil {
		return navigation.NewInventoryCallback(navigation.InvLevelMenu, navigation.RootCategoryID).Pack()
	}
	up := cb
	up.Page = 0
	up.CategoryID = navigation.RootCategoryID
	if current.ParentID.Valid {
		up.CategoryID = current.ParentID.Int64
	}
	return up.Pack()
}

// ProductManagement renders a product node with its stock, price and the
// per-product actions.
func (s *AdminService) ProductManagement(cb navigation.InventoryCallback) (string, *tele.ReplyMarkup, error) {
	product, err := s.categories.GetByID(cb.CategoryID)
	if errors.Is(err, repository.ErrNotFound) {
		return s.staleNodeFallback(cb)
	}
	if err != nil {
		return "", nil, err
	}
	if !product.IsProduct {
		return s.CategoryBrowser(cb.BackTo(navigation.InvLevelBrowser))
	}

	crumb, err := s.breadcrumb(product.ID)
	if err != nil {
		return "", nil, err
	}
	qty, err := s.categories.GetAvailableQty(product.ID)
	if err != nil {
		return "", nil, err
	}
	sold, err := s.categories.CountSoldInSubtree(product.ID)
	if err != nil {
		return "", nil, err
	}

	var text strings.Builder
	fmt.Fprintf(&text, "%s\n\n📄 %s\n", crumb, product.Name)
	if product.Price.Valid {
		fmt.Fprintf(&text, "💵 Price: %s\n", s.money(product.Price.Float64))
	} else {
		text.WriteString("💵 Price: not set\n")
	}
	fmt.Fprintf(&text, "📦 In stock: %d\n🧾 Sold: %d\n", qty, sold)
	if product.Description.Valid && product.Description.String != "" {
		fmt.Fprintf(&text, "\n%s\n", product.Description.String)
	}
	if product.ImageFileID.Valid {
		text.WriteString("🖼 Image: set\n")
	}
	if !product.IsActive {
		text.WriteString("\n🗃 This product is archived.\n")
	}

	menu := &tele.ReplyMarkup{}
	action := func(a navigation.InventoryAction) string {
		t := cb.BackTo(navigation.InvLevelAction)
		t.Action = a
		return t.Pack()
	}
	rows := []tele.Row{
		menu.Row(menu.Data("📥 Add items", action(navigation.ActionAddItems))),
		menu.Row(
			menu.Data("💵 Edit price", action(navigation.ActionEditPrice)),
			menu.Data("📝 Edit description", action(navigation.ActionEditDescription)),
		),
		menu.Row(menu.Data("🖼 Edit image", action(navigation.ActionEditImage))),
	}
	if product.IsActive {
		del := cb.BackTo(navigation.InvLevelDeleteConfirm)
		del.Action = navigation.ActionDelete
		rows = append(rows, menu.Row(menu.Data("🗑 Delete product", del.Pack())))
	} else {
		rows = append(rows, menu.Row(menu.Data("♻️ Reactivate", action(navigation.ActionReactivate))))
	}

	back := cb.BackTo(navigation.InvLevelBrowser)
	back.CategoryID = navigation.RootCategoryID
	back.Page = 0
	if product.ParentID.Valid {
		back.CategoryID = product.ParentID.Int64
	}
	rows = append(rows, menu.Row(menu.Data("⬅️ Back", back.Pack())))

	menu.Inline(rows...)
	return text.String(), menu, nil
}

// ActionPrompt starts the branch picked on a node: it either renders a
// sub-chooser or arms a conversation state and asks for input.
func (s *AdminService) ActionPrompt(adminID int64, cb navigation.InventoryCallback) (string, *tele.ReplyMarkup, error) {
	// Adding under a node requires the node to still exist.
	if cb.CategoryID != navigation.RootCategoryID {
		if _, err := s.categories.GetByID(cb.CategoryID); errors.Is(err, repository.ErrNotFound) {
			return s.staleNodeFallback(cb)
		} else if err != nil {
			return "", nil, err
		}
	}

	switch cb.Action {
	case navigation.ActionAddCategory:
		s.sessions.Set(adminID, AwaitingCategoryName{ParentID: cb.CategoryID})
		return "Send the new category name, or 'cancel' to abort.", nil, nil

	case navigation.ActionAddProduct:
		s.sessions.Set(adminID, AwaitingProductName{ParentID: cb.CategoryID})
		return "Send the new product name, or 'cancel' to abort.", nil, nil

	case navigation.ActionAddItems:
		return s.addItemsPrompt(adminID, cb)

	case navigation.ActionEditPrice:
		s.sessions.Set(adminID, AwaitingNewPrice{CategoryID: cb.CategoryID})
		return "Send the new price, or 'cancel' to abort.", nil, nil

	case navigation.ActionEditDescription:
		s.sessions.Set(adminID, AwaitingNewDescription{CategoryID: cb.CategoryID})
		return "Send the new description, or 'cancel' to abort.", nil, nil

	case navigation.ActionEditImage:
		s.sessions.Set(adminID, AwaitingNewImage{CategoryID: cb.CategoryID})
		return "Send the new product photo, or 'cancel' to abort.", nil, nil

	case navigation.ActionReactivate:
		return s.reactivate(cb)

	default:
		text, menu := s.InventoryMenu()
		return text, menu, nil
	}
}

func (s *AdminService) addItemsPrompt(adminID int64, cb navigation.InventoryCallback) (string, *tele.ReplyMarkup, error) {
	if cb.AddType == navigation.AddTypeNone {
		menu := &tele.ReplyMarkup{}
		jsonCB := cb
		jsonCB.AddType = navigation.AddTypeJSON
		txtCB := cb
		txtCB.AddType = navigation.AddTypeText
		menu.Inline(
			menu.Row(
				menu.Data("📄 JSON file", jsonCB.Pack()),
				menu.Data("📃 Text file", txtCB.Pack()),
			),
			menu.Row(menu.Data("⬅️ Back", cb.BackTo(navigation.InvLevelProduct).Pack())),
		)
		return "Pick the upload format.", menu, nil
	}

	if cb.AddType == navigation.AddTypeText && cb.CategoryID == navigation.RootCategoryID {
		text, menu := s.InventoryMenu()
		return "Text upload needs a target product. Browse to the product first, then add items there.\n\n" + text, menu, nil
	}

	s.sessions.Set(adminID, AwaitingItemsFile{CategoryID: cb.CategoryID, AddType: cb.AddType})
	switch cb.AddType {
	case navigation.AddTypeJSON:
		return "Send a .json file: an array of objects with \"private_data\" and, when no product is targeted, \"product_id\". Or 'cancel' to abort.", nil, nil
	default:
		return "Send a .txt file with one item per line. Or 'cancel' to abort.", nil, nil
	}
}

func (s *AdminService) reactivate(cb navigation.InventoryCallback) (string, *tele.ReplyMarkup, error) {
	if err := s.categories.SetActive(cb.CategoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return s.staleNodeFallback(cb)
		}
		return "", nil, err
	}
	next := cb.BackTo(navigation.InvLevelBrowser)
	next.ShowArchived = false
	next.Page = 0
	text, menu, err := s.CategoryBrowser(next)
	if err != nil {
		return "", nil, err
	}
	return "♻️ Reactivated.\n\n" + text, menu, nil
}

// DeleteConfirmation shows what the delete will actually do. With sold
// records anywhere in the subtree the node is archived instead of removed,
// and the prompt says so up front.
func (s *AdminService) DeleteConfirmation(cb navigation.InventoryCallback) (string, *tele.ReplyMarkup, error) {
	node, err := s.categories.GetByID(cb.CategoryID)
	if errors.Is(err, repository.ErrNotFound) {
		return s.staleNodeFallback(cb)
	}
	if err != nil {
		return "", nil, err
	}

	sold, err := s.categories.CountSoldInSubtree(node.ID)
	if err != nil {
		return "", nil, err
	}

	var text string
	if sold > 0 {
		text = fmt.Sprintf("⚠️ %q has %d sold record(s) in its subtree.\nIt will be archived instead of deleted, keeping the sale history intact.", node.Name, sold)
	} else {
		children, err := s.categories.CountChildren(node.ID)
		if err != nil {
			return "", nil, err
		}
		text = fmt.Sprintf("❗️ %q, its %d direct subnode(s) and all unsold stock beneath it will be permanently deleted.\nThis cannot be undone.", node.Name, children)
	}

	confirm := cb.BackTo(navigation.InvLevelDeleteExecute)
	confirm.Confirmation = true
	cancel := cb.BackTo(navigation.InvLevelBrowser)
	cancel.CategoryID = navigation.RootCategoryID
	if node.ParentID.Valid {
		cancel.CategoryID = node.ParentID.Int64
	}
	cancel.Page = 0

	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(menu.Data("✅ Confirm", confirm.Pack())),
		menu.Row(menu.Data("⬅️ Cancel", cancel.Pack())),
	)
	return text, menu, nil
}

// ExecuteDelete re-checks the sold count and then deletes or archives.
// The re-check matters: stock can sell between the confirmation prompt
// and the button press.
func (s *AdminService) ExecuteDelete(cb navigation.InventoryCallback) (string, *tele.ReplyMarkup, error) {
	if !cb.Confirmation {
		return s.DeleteConfirmation(cb.BackTo(navigation.InvLevelDeleteConfirm))
	}

	node, err := s.categories.GetByID(cb.CategoryID)
	if errors.Is(err, repository.ErrNotFound) {
		return s.staleNodeFallback(cb)
	}
	if err != nil {
		return "", nil, err
	}

	sold, err := s.categories.CountSoldInSubtree(node.ID)
	if err != nil {
		return "", nil, err
	}

	var notice string
	if sold > 0 {
		if err := s.categories.SetInactive(node.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return s.staleNodeFallback(cb)
			}
			return "", nil, err
		}
		notice = fmt.Sprintf("🗃 %q archived, %d sold record(s) kept.", node.Name, sold)
	} else {
		if err := s.categories.DeleteByID(node.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return s.staleNodeFallback(cb)
			}
			return "", nil, err
		}
		notice = fmt.Sprintf("🗑 %q deleted.", node.Name)
	}

	next := cb.BackTo(navigation.InvLevelBrowser)
	next.CategoryID = navigation.RootCategoryID
	if node.ParentID.Valid {
		next.CategoryID = node.ParentID.Int64
	}
	next.Page = 0
	next.Confirmation = false
	text, menu, err := s.CategoryBrowser(next)
	if err != nil {
		return "", nil, err
	}
	return notice + "\n\n" + text, menu, nil
}

func (s *AdminService) staleNodeFallback(cb navigation.InventoryCallback) (string, *tele.ReplyMarkup, error) {
	root := navigation.NewInventoryCallback(navigation.InvLevelBrowser, navigation.RootCategoryID)
	root.ShowArchived = cb.ShowArchived
	text, menu, err := s.CategoryBrowser(root)
	if err != nil {
		return "", nil, err
	}
	return "⚠️ That node no longer exists.\n\n" + text, menu, nil
}

// ── free-text input handlers ──────────────────────────────────────────

// HandleCategoryName creates a container node from the admin's reply.
// Duplicate or invalid names keep the state armed so the admin can retry.
func (s *AdminService) HandleCategoryName(adminID int64, st AwaitingCategoryName, name string) (string, *tele.ReplyMarkup, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNodeNameLen {
		return fmt.Sprintf("Category names must be 1 to %d characters. Try again or send 'cancel'.", maxNodeNameLen), nil, nil
	}
	parentID := parentIDPtr(st.ParentID)
	exists, err := s.categories.ExistsAtLevel(name, parentID)
	if err != nil {
		return "", nil, err
	}
	if exists {
		return fmt.Sprintf("%q already exists at this level. Send another name or 'cancel'.", name), nil, nil
	}
	if _, err := s.categories.Create(name, parentID, false, nil, nil); err != nil {
		return "", nil, err
	}
	s.sessions.Clear(adminID)

	browser := navigation.NewInventoryCallback(navigation.InvLevelBrowser, st.ParentID)
	text, menu, err := s.CategoryBrowser(browser)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("✅ Category %q created.\n\n%s", name, text), menu, nil
}

// HandleProductName is step one of product creation; price and
// description follow.
func (s *AdminService) HandleProductName(adminID int64, st AwaitingProductName, name string) (string, *tele.ReplyMarkup, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNodeNameLen {
		return fmt.Sprintf("Product names must be 1 to %d characters. Try again or send 'cancel'.", maxNodeNameLen), nil, nil
	}
	exists, err := s.categories.ExistsAtLevel(name, parentIDPtr(st.ParentID))
	if err != nil {
		return "", nil, err
	}
	if exists {
		return fmt.Sprintf("%q already exists at this level. Send another name or 'cancel'.", name), nil, nil
	}
	s.sessions.Set(adminID, AwaitingProductPrice{ParentID: st.ParentID, Name: name})
	return fmt.Sprintf("Now send the price for %q.", name), nil, nil
}

func (s *AdminService) HandleProductPrice(adminID int64, st AwaitingProductPrice, text string) (string, *tele.ReplyMarkup, error) {
	price, err := parsePositiveAmount(text)
	if err != nil {
		return "That is not a valid price. Send a positive number or 'cancel'.", nil, nil
	}
	s.sessions.Set(adminID, AwaitingProductDescription{ParentID: st.ParentID, Name: st.Name, Price: price})
	return "Now send the product description.", nil, nil
}

func (s *AdminService) HandleProductDescription(adminID int64, st AwaitingProductDescription, text string) (string, *tele.ReplyMarkup, error) {
	description := strings.TrimSpace(text)
	if description == "" {
		return "The description cannot be empty. Try again or send 'cancel'.", nil, nil
	}
	// the name was free at step one, but another admin can take it while
	// the dialogue is open
	exists, err := s.categories.ExistsAtLevel(st.Name, parentIDPtr(st.ParentID))
	if err != nil {
		return "", nil, err
	}
	if exists {
		s.sessions.Clear(adminID)
		browser := navigation.NewInventoryCallback(navigation.InvLevelBrowser, st.ParentID)
		body, menu, err := s.CategoryBrowser(browser)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("❌ %q was taken while you were typing. Nothing was created.\n\n%s", st.Name, body), menu, nil
	}
	product, err := s.categories.Create(st.Name, parentIDPtr(st.ParentID), true, &st.Price, &description)
	if err != nil {
		return "", nil, err
	}
	s.sessions.Clear(adminID)

	screen := navigation.NewInventoryCallback(navigation.InvLevelProduct, product.ID)
	body, menu, err := s.ProductManagement(screen)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("✅ Product %q created.\n\n%s", st.Name, body), menu, nil
}

func (s *AdminService) HandleNewPrice(adminID int64, st AwaitingNewPrice, text string) (string, *tele.ReplyMarkup, error) {
	price, err := parsePositiveAmount(text)
	if err != nil {
		return "That is not a valid price. Send a positive number or 'cancel'.", nil, nil
	}
	if err := s.categories.UpdatePrice(st.CategoryID, price); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.sessions.Clear(adminID)
			return s.staleNodeFallback(navigation.NewInventoryCallback(navigation.InvLevelBrowser, st.CategoryID))
		}
		return "", nil, err
	}
	s.sessions.Clear(adminID)
	return s.editedProductScreen(st.CategoryID, "✅ Price updated.")
}

func (s *AdminService) HandleNewDescription(adminID int64, st AwaitingNewDescription, text string) (string, *tele.ReplyMarkup, error) {
	description := strings.TrimSpace(text)
	if description == "" {
		return "The description cannot be empty. Try again or send 'cancel'.", nil, nil
	}
	if err := s.categories.UpdateDescription(st.CategoryID, description); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.sessions.Clear(adminID)
			return s.staleNodeFallback(navigation.NewInventoryCallback(navigation.InvLevelBrowser, st.CategoryID))
		}
		return "", nil, err
	}
	s.sessions.Clear(adminID)
	return s.editedProductScreen(st.CategoryID, "✅ Description updated.")
}

// HandleNewImage stores the Telegram file id of the photo the admin sent.
func (s *AdminService) HandleNewImage(adminID int64, st AwaitingNewImage, fileID string) (string, *tele.ReplyMarkup, error) {
	if fileID == "" {
		return "That message has no photo. Send a photo or 'cancel'.", nil, nil
	}
	if err := s.categories.UpdateImage(st.CategoryID, fileID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.sessions.Clear(adminID)
			return s.staleNodeFallback(navigation.NewInventoryCallback(navigation.InvLevelBrowser, st.CategoryID))
		}
		return "", nil, err
	}
	s.sessions.Clear(adminID)
	return s.editedProductScreen(st.CategoryID, "✅ Image updated.")
}

func (s *AdminService) editedProductScreen(categoryID int64, notice string) (string, *tele.ReplyMarkup, error) {
	screen := navigation.NewInventoryCallback(navigation.InvLevelProduct, categoryID)
	body, menu, err := s.ProductManagement(screen)
	if err != nil {
		return "", nil, err
	}
	return notice + "\n\n" + body, menu, nil
}

// HandleItemsFile ingests an uploaded stock batch and reports per-product
// counts. The state is cleared only on success, a broken file can simply
// be re-sent.
func (s *AdminService) HandleItemsFile(adminID int64, st AwaitingItemsFile, content []byte) (string, *tele.ReplyMarkup, error) {
	var (
		batches map[int64][]string
		err     error
	)
	switch st.AddType {
	case navigation.AddTypeJSON:
		batches, err = ParseItemsJSON(content, st.CategoryID)
	default:
		batches, err = ParseItemsText(content, st.CategoryID)
	}
	if err != nil {
		return fmt.Sprintf("❌ %v\nFix the file and send it again, or 'cancel'.", err), nil, nil
	}

	total := 0
	var lines []string
	for categoryID, privateData := range batches {
		product, err := s.categories.GetByID(categoryID)
		if errors.Is(err, repository.ErrNotFound) {
			lines = append(lines, fmt.Sprintf("• product %d: not found, skipped", categoryID))
			continue
		}
		if err != nil {
			return "", nil, err
		}
		if !product.IsProduct {
			lines = append(lines, fmt.Sprintf("• %s: not a product, skipped", product.Name))
			continue
		}
		n, err := s.items.AddMany(categoryID, privateData)
		if err != nil {
			return "", nil, err
		}
		total += n
		lines = append(lines, fmt.Sprintf("• %s: +%d", product.Name, n))
	}
	s.sessions.Clear(adminID)

	text := fmt.Sprintf("📥 Added %d item(s).\n%s", total, strings.Join(lines, "\n"))
	_, menu := s.InventoryMenu()
	if st.CategoryID != navigation.RootCategoryID {
		if _, m, err := s.ProductManagement(navigation.NewInventoryCallback(navigation.InvLevelProduct, st.CategoryID)); err == nil {
			menu = m
		}
	}
	return text, menu, nil
}

func parentIDPtr(id int64) *int64 {
	if id == navigation.RootCategoryID {
		return nil
	}
	return &id
}

func parsePositiveAmount(text string) (float64, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}
	return amount, nil
}
