package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nalyk/shopbot/internal/navigation"
	"github.com/nalyk/shopbot/internal/repository"
)

func TestCategoryBrowserRoot(t *testing.T) {
	env := newTestEnv(t)
	env.category(t, "Gift cards", nil)
	env.product(t, "VPN key", nil, 9.99)

	text, menu, err := env.svc.CategoryBrowser(
		navigation.NewInventoryCallback(navigation.InvLevelBrowser, navigation.RootCategoryID))
	require.NoError(t, err)
	assert.Contains(t, text, "🏠")
	require.NotNil(t, menu)

	labels := markupLabels(menu)
	assert.Contains(t, labels, "📁 Gift cards (0)")
	assert.Contains(t, labels, "📄 VPN key · 0 pcs · $9.99")
}

func TestCategoryBrowserStaleNodeFallsBackToRoot(t *testing.T) {
	env := newTestEnv(t)
	env.category(t, "Still here", nil)

	cb := navigation.NewInventoryCallback(navigation.InvLevelBrowser, 424242)
	text, menu, err := env.svc.CategoryBrowser(cb)
	require.NoError(t, err)
	assert.Contains(t, text, "no longer exists")
	assert.Contains(t, markupLabels(menu), "📁 Still here (0)")
}

func TestArchivedScopeHidesMutatingActions(t *testing.T) {
	env := newTestEnv(t)
	node := env.category(t, "Old", nil)
	require.NoError(t, env.categories.SetInactive(node.ID))

	cb := navigation.NewInventoryCallback(navigation.InvLevelBrowser, node.ID)
	cb.ShowArchived = true
	_, menu, err := env.svc.CategoryBrowser(cb)
	require.NoError(t, err)

	labels := markupLabels(menu)
	assert.NotContains(t, labels, "➕ Category")
	assert.NotContains(t, labels, "➕ Product")
	assert.Contains(t, labels, "♻️ Reactivate this category")
}

func TestActionPromptArmsCategoryDialogue(t *testing.T) {
	env := newTestEnv(t)

	cb := navigation.NewInventoryCallback(navigation.InvLevelAction, navigation.RootCategoryID)
	cb.Action = navigation.ActionAddCategory
	text, _, err := env.svc.ActionPrompt(testAdminID, cb)
	require.NoError(t, err)
	assert.Contains(t, text, "category name")

	state, ok := env.svc.sessions.Get(testAdminID)
	require.True(t, ok)
	assert.Equal(t, AwaitingCategoryName{ParentID: navigation.RootCategoryID}, state)
}

func TestHandleCategoryNameRejectsDuplicates(t *testing.T) {
	env := newTestEnv(t)
	env.category(t, "Accounts", nil)
	st := AwaitingCategoryName{ParentID: navigation.RootCategoryID}
	env.svc.sessions.Set(testAdminID, st)

	text, _, err := env.svc.HandleCategoryName(testAdminID, st, "Accounts")
	require.NoError(t, err)
	assert.Contains(t, text, "already exists")

	// the dialogue stays armed for a retry
	_, ok := env.svc.sessions.Get(testAdminID)
	assert.True(t, ok)

	text, _, err = env.svc.HandleCategoryName(testAdminID, st, "Subscriptions")
	require.NoError(t, err)
	assert.Contains(t, text, "created")
	_, ok = env.svc.sessions.Get(testAdminID)
	assert.False(t, ok)
}

func TestProductCreationDialogue(t *testing.T) {
	env := newTestEnv(t)
	parent := env.category(t, "Keys", nil)

	st := AwaitingProductName{ParentID: parent.ID}
	env.svc.sessions.Set(testAdminID, st)
	_, _, err := env.svc.HandleProductName(testAdminID, st, "Premium key")
	require.NoError(t, err)

	state, ok := env.svc.sessions.Get(testAdminID)
	require.True(t, ok)
	priceState, ok := state.(AwaitingProductPrice)
	require.True(t, ok)

	reply, _, err := env.svc.HandleProductPrice(testAdminID, priceState, "not a number")
	require.NoError(t, err)
	assert.Contains(t, reply, "not a valid price")

	_, _, err = env.svc.HandleProductPrice(testAdminID, priceState, "19.99")
	require.NoError(t, err)

	state, _ = env.svc.sessions.Get(testAdminID)
	descState, ok := state.(AwaitingProductDescription)
	require.True(t, ok)
	assert.InDelta(t, 19.99, descState.Price, 1e-9)

	reply, menu, err := env.svc.HandleProductDescription(testAdminID, descState, "Spotify premium, 12 months")
	require.NoError(t, err)
	assert.Contains(t, reply, "created")
	require.NotNil(t, menu)

	products, err := env.categories.GetChildrenFiltered(parent.ID, 0, 10, false)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.True(t, products[0].IsProduct)
	assert.InDelta(t, 19.99, products[0].Price.Float64, 1e-9)
}

func TestProductCreationRejectsNameTakenMidDialogue(t *testing.T) {
	env := newTestEnv(t)
	parent := env.category(t, "Keys", nil)

	st := AwaitingProductName{ParentID: parent.ID}
	env.svc.sessions.Set(testAdminID, st)
	_, _, err := env.svc.HandleProductName(testAdminID, st, "Premium key")
	require.NoError(t, err)

	// a second admin takes the name while the dialogue waits for input
	env.product(t, "Premium key", &parent.ID, 5)

	descState := AwaitingProductDescription{ParentID: parent.ID, Name: "Premium key", Price: 19.99}
	env.svc.sessions.Set(testAdminID, descState)
	reply, _, err := env.svc.HandleProductDescription(testAdminID, descState, "Spotify premium, 12 months")
	require.NoError(t, err)
	assert.Contains(t, reply, "Nothing was created")

	products, err := env.categories.GetChildrenFiltered(parent.ID, 0, 10, false)
	require.NoError(t, err)
	require.Len(t, products, 1)

	_, ok := env.svc.sessions.Get(testAdminID)
	assert.False(t, ok)
}

func TestDeleteConfirmationWarnsAboutSoldStock(t *testing.T) {
	env := newTestEnv(t)
	root := env.category(t, "Root", nil)
	product := env.product(t, "Product", &root.ID, 10)
	_, err := env.items.AddMany(product.ID, []string{"a", "b"})
	require.NoError(t, err)
	env.sellOne(t, product.ID)

	cb := navigation.NewInventoryCallback(navigation.InvLevelDeleteConfirm, root.ID)
	cb.Action = navigation.ActionDelete
	text, menu, err := env.svc.DeleteConfirmation(cb)
	require.NoError(t, err)
	assert.Contains(t, text, "archived instead of deleted")
	assert.Contains(t, markupLabels(menu), "✅ Confirm")
}

func TestExecuteDeleteArchivesWhenSubtreeHasSales(t *testing.T) {
	env := newTestEnv(t)
	root := env.category(t, "Root", nil)
	product := env.product(t, "Product", &root.ID, 10)
	_, err := env.items.AddMany(product.ID, []string{"a", "b"})
	require.NoError(t, err)
	env.sellOne(t, product.ID)

	cb := navigation.NewInventoryCallback(navigation.InvLevelDeleteExecute, root.ID)
	cb.Confirmation = true
	text, _, err := env.svc.ExecuteDelete(cb)
	require.NoError(t, err)
	assert.Contains(t, text, "archived")

	kept, err := env.categories.GetByID(root.ID)
	require.NoError(t, err)
	assert.False(t, kept.IsActive)

	// sale history is still reachable
	_, err = env.categories.GetByID(product.ID)
	assert.NoError(t, err)
}

func TestExecuteDeleteRemovesCleanSubtree(t *testing.T) {
	env := newTestEnv(t)
	root := env.category(t, "Root", nil)
	product := env.product(t, "Product", &root.ID, 10)
	_, err := env.items.AddMany(product.ID, []string{"a", "b"})
	require.NoError(t, err)

	cb := navigation.NewInventoryCallback(navigation.InvLevelDeleteExecute, root.ID)
	cb.Confirmation = true
	text, _, err := env.svc.ExecuteDelete(cb)
	require.NoError(t, err)
	assert.Contains(t, text, "deleted")

	_, err = env.categories.GetByID(root.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = env.categories.GetByID(product.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestExecuteDeleteReChecksSoldCount(t *testing.T) {
	env := newTestEnv(t)
	root := env.category(t, "Root", nil)
	product := env.product(t, "Product", &root.ID, 10)
	_, err := env.items.AddMany(product.ID, []string{"a", "b"})
	require.NoError(t, err)

	// confirmation prompt saw a clean subtree
	cb := navigation.NewInventoryCallback(navigation.InvLevelDeleteConfirm, root.ID)
	text, _, err := env.svc.DeleteConfirmation(cb)
	require.NoError(t, err)
	assert.Contains(t, text, "permanently deleted")

	// a sale lands between prompt and button press
	env.sellOne(t, product.ID)

	exec := cb.BackTo(navigation.InvLevelDeleteExecute)
	exec.Confirmation = true
	text, _, err = env.svc.ExecuteDelete(exec)
	require.NoError(t, err)
	assert.Contains(t, text, "archived", "the execute step re-evaluates the sold count")
}

func TestExecuteDeleteWithoutConfirmationRendersPrompt(t *testing.T) {
	env := newTestEnv(t)
	root := env.category(t, "Root", nil)

	cb := navigation.NewInventoryCallback(navigation.InvLevelDeleteExecute, root.ID)
	text, _, err := env.svc.ExecuteDelete(cb)
	require.NoError(t, err)
	assert.Contains(t, text, "permanently deleted")

	_, err = env.categories.GetByID(root.ID)
	assert.NoError(t, err, "nothing was deleted without the confirmation flag")
}

func TestHandleItemsFileTargetsProduct(t *testing.T) {
	env := newTestEnv(t)
	product := env.product(t, "Product", nil, 10)

	st := AwaitingItemsFile{CategoryID: product.ID, AddType: navigation.AddTypeText}
	env.svc.sessions.Set(testAdminID, st)

	text, _, err := env.svc.HandleItemsFile(testAdminID, st, []byte("key-1\nkey-2\n\nkey-3\n"))
	require.NoError(t, err)
	assert.Contains(t, text, "Added 3 item(s)")

	qty, err := env.categories.GetAvailableQty(product.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, qty)

	_, ok := env.svc.sessions.Get(testAdminID)
	assert.False(t, ok)
}

func TestHandleItemsFileKeepsStateOnBadFile(t *testing.T) {
	env := newTestEnv(t)
	product := env.product(t, "Product", nil, 10)

	st := AwaitingItemsFile{CategoryID: product.ID, AddType: navigation.AddTypeJSON}
	env.svc.sessions.Set(testAdminID, st)

	text, _, err := env.svc.HandleItemsFile(testAdminID, st, []byte("{not json"))
	require.NoError(t, err)
	assert.Contains(t, text, "❌")

	_, ok := env.svc.sessions.Get(testAdminID)
	assert.True(t, ok, "a broken file can be re-sent")
}

func TestArchiveTogglePreservesScopeAndPage(t *testing.T) {
	env := newTestEnv(t)
	node := env.category(t, "Node", nil)

	cb := navigation.NewInventoryCallback(navigation.InvLevelBrowser, node.ID)
	cb.Page = 2
	_, menu, err := env.svc.CategoryBrowser(cb)
	require.NoError(t, err)

	btn := findButton(menu, "🗃 Show archived")
	require.NotNil(t, btn)
	toggled, err := navigation.UnpackInventory(btn.Unique)
	require.NoError(t, err)
	assert.True(t, toggled.ShowArchived)
	assert.Equal(t, node.ID, toggled.CategoryID)
	assert.Equal(t, 2, toggled.Page)
}
