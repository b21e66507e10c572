package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"gorm.io/gorm"

	"backoffice-backend/internal/models"
	"backoffice-backend/internal/ordering"
	"backoffice-backend/internal/repository"
)

// memoryOrderStore reorders rows addressed by pointers to their order column.
// Failed transactions restore the previous orders.
type memoryOrderStore struct {
	orders  map[uint]*int
	failOn  uint
	applied int
}

type memoryOrderTx struct {
	store *memoryOrderStore
}

func (s *memoryOrderStore) Transaction(_ context.Context, fn func(tx ordering.Tx) error) error {
	snapshot := make(map[uint]int, len(s.orders))
	for id, order := range s.orders {
		snapshot[id] = *order
	}
	if err := fn(memoryOrderTx{store: s}); err != nil {
		for id, order := range snapshot {
			*s.orders[id] = order
		}
		return err
	}
	s.applied++
	return nil
}

func (tx memoryOrderTx) CountExisting(ids []uint) (int64, error) {
	var count int64
	for _, id := range ids {
		if _, ok := tx.store.orders[id]; ok {
			count++
		}
	}
	return count, nil
}

func (tx memoryOrderTx) SetOrder(id uint, order int) error {
	if tx.store.failOn != 0 && tx.store.failOn == id {
		return errors.New("write failed")
	}
	target, ok := tx.store.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	*target = order
	return nil
}

type memoryAuditRepository struct {
	entries []*models.AuditLog
	err     error
	last    repository.AuditListOptions
}

func (r *memoryAuditRepository) Create(_ context.Context, entry *models.AuditLog) error {
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, entry)
	return nil
}

// List filters by module and returns records newest first.
func (r *memoryAuditRepository) List(_ context.Context, opts repository.AuditListOptions) ([]models.AuditLog, int64, error) {
	r.last = opts
	logs := make([]models.AuditLog, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		if opts.Filter.Module != "" && r.entries[i].Module != opts.Filter.Module {
			continue
		}
		logs = append(logs, *r.entries[i])
	}

	total := int64(len(logs))
	if opts.Offset >= len(logs) {
		return []models.AuditLog{}, total, nil
	}
	end := opts.Offset + opts.Limit
	if opts.Limit <= 0 || end > len(logs) {
		end = len(logs)
	}
	return logs[opts.Offset:end], total, nil
}

func (r *memoryAuditRepository) actions() []string {
	actions := make([]string, 0, len(r.entries))
	for _, entry := range r.entries {
		actions = append(actions, entry.Action)
	}
	return actions
}

type memoryComponentRepository struct {
	components map[uint]*models.PageComponent
	nextID     uint
	createErr  error
}

func newMemoryComponentRepository() *memoryComponentRepository {
	return &memoryComponentRepository{components: make(map[uint]*models.PageComponent)}
}

func cloneComponent(component *models.PageComponent) *models.PageComponent {
	clone := *component
	clone.Fields = append([]models.PageComponentField(nil), component.Fields...)
	return &clone
}

func (r *memoryComponentRepository) List(context.Context) ([]models.PageComponent, error) {
	components := make([]models.PageComponent, 0, len(r.components))
	for _, component := range r.components {
		components = append(components, *cloneComponent(component))
	}
	sort.Slice(components, func(i, j int) bool {
		if components[i].Order != components[j].Order {
			return components[i].Order < components[j].Order
		}
		return components[i].ID > components[j].ID
	})
	return components, nil
}

func (r *memoryComponentRepository) GetByID(_ context.Context, id uint) (*models.PageComponent, error) {
	component, ok := r.components[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneComponent(component), nil
}

// Transaction restores the stored components when fn fails.
func (r *memoryComponentRepository) Transaction(_ context.Context, fn func(tx repository.PageComponentTx) error) error {
	snapshot := make(map[uint]*models.PageComponent, len(r.components))
	for id, component := range r.components {
		snapshot[id] = component
	}
	nextID := r.nextID
	if err := fn(memoryComponentTx{repo: r}); err != nil {
		r.components = snapshot
		r.nextID = nextID
		return err
	}
	return nil
}

type memoryComponentTx struct {
	repo *memoryComponentRepository
}

func (tx memoryComponentTx) GetByID(id uint) (*models.PageComponent, error) {
	return tx.repo.GetByID(context.Background(), id)
}

func (tx memoryComponentTx) ExistsByName(name string, excludeID uint) (bool, error) {
	for id, component := range tx.repo.components {
		if component.Name == name && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (tx memoryComponentTx) ExistsBySlug(slug string) (bool, error) {
	for _, component := range tx.repo.components {
		if component.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (tx memoryComponentTx) NextOrder() (int, error) {
	if len(tx.repo.components) == 0 {
		return 0, nil
	}
	highest := 0
	for _, component := range tx.repo.components {
		if component.Order > highest {
			highest = component.Order
		}
	}
	return highest + 1, nil
}

func (tx memoryComponentTx) Create(component *models.PageComponent) error {
	if tx.repo.createErr != nil {
		return tx.repo.createErr
	}
	tx.repo.nextID++
	component.ID = tx.repo.nextID
	for i := range component.Fields {
		component.Fields[i].ID = uint(i + 1)
		component.Fields[i].ComponentID = component.ID
	}
	tx.repo.components[component.ID] = cloneComponent(component)
	return nil
}

func (tx memoryComponentTx) Update(component *models.PageComponent) error {
	if _, ok := tx.repo.components[component.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	tx.repo.components[component.ID] = cloneComponent(component)
	return nil
}

func (r *memoryComponentRepository) Delete(_ context.Context, id uint) error {
	if _, ok := r.components[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.components, id)
	return nil
}

// memoryPages backs both the page and the block repository.
type memoryPages struct {
	pages       map[uint]*models.Page
	blocks      map[uint]*models.PageBlock
	nextPageID  uint
	nextBlockID uint
}

func newMemoryPages() *memoryPages {
	return &memoryPages{
		pages:  make(map[uint]*models.Page),
		blocks: make(map[uint]*models.PageBlock),
	}
}

func (m *memoryPages) blocksOf(pageID uint) []models.PageBlock {
	blocks := make([]models.PageBlock, 0)
	for _, block := range m.blocks {
		if block.PageID == pageID {
			blocks = append(blocks, *block)
		}
	}
	sort.Slice(blocks, func(i, j int) bool {
		if blocks[i].Order != blocks[j].Order {
			return blocks[i].Order < blocks[j].Order
		}
		return blocks[i].ID < blocks[j].ID
	})
	return blocks
}

type memoryPageRepository struct {
	*memoryPages
}

func (r memoryPageRepository) List(context.Context) ([]models.Page, error) {
	pages := make([]models.Page, 0, len(r.pages))
	for _, page := range r.pages {
		pages = append(pages, *page)
	}
	sort.Slice(pages, func(i, j int) bool {
		if pages[i].Order != pages[j].Order {
			return pages[i].Order < pages[j].Order
		}
		return pages[i].ID > pages[j].ID
	})
	return pages, nil
}

func (r memoryPageRepository) GetByID(_ context.Context, id uint) (*models.Page, error) {
	page, ok := r.pages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *page
	clone.Blocks = nil
	return &clone, nil
}

func (r memoryPageRepository) GetWithBlocks(ctx context.Context, id uint) (*models.Page, error) {
	page, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	page.Blocks = r.blocksOf(id)
	return page, nil
}

func (r memoryPageRepository) GetBySlugWithBlocks(ctx context.Context, slug string) (*models.Page, error) {
	for id, page := range r.pages {
		if page.Slug == slug {
			return r.GetWithBlocks(ctx, id)
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memoryPageRepository) Transaction(_ context.Context, fn func(tx repository.PageTx) error) error {
	return fn(memoryPageTx{r.memoryPages})
}

type memoryPageTx struct {
	*memoryPages
}

func (tx memoryPageTx) ExistsByName(name string) (bool, error) {
	for _, page := range tx.pages {
		if page.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (tx memoryPageTx) ExistsBySlug(slug string) (bool, error) {
	for _, page := range tx.pages {
		if page.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (tx memoryPageTx) NextOrder() (int, error) {
	if len(tx.pages) == 0 {
		return 0, nil
	}
	highest := 0
	for _, page := range tx.pages {
		if page.Order > highest {
			highest = page.Order
		}
	}
	return highest + 1, nil
}

func (tx memoryPageTx) Create(page *models.Page) error {
	tx.nextPageID++
	page.ID = tx.nextPageID
	stored := *page
	stored.Blocks = nil
	tx.pages[page.ID] = &stored
	return nil
}

func (r memoryPageRepository) Delete(_ context.Context, id uint) error {
	if _, ok := r.pages[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	for blockID, block := range r.blocks {
		if block.PageID == id {
			delete(r.blocks, blockID)
		}
	}
	delete(r.pages, id)
	return nil
}

func (r memoryPageRepository) OrderStore() ordering.Store {
	orders := make(map[uint]*int, len(r.pages))
	for id, page := range r.pages {
		orders[id] = &page.Order
	}
	return &memoryOrderStore{orders: orders}
}

type memoryBlockRepository struct {
	*memoryPages
}

func (r memoryBlockRepository) GetByID(_ context.Context, id uint) (*models.PageBlock, error) {
	block, ok := r.blocks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *block
	return &clone, nil
}

func (r memoryBlockRepository) Append(_ context.Context, block *models.PageBlock) error {
	block.Order = 0
	if blocks := r.blocksOf(block.PageID); len(blocks) > 0 {
		block.Order = blocks[len(blocks)-1].Order + 1
	}
	r.nextBlockID++
	block.ID = r.nextBlockID
	stored := *block
	r.blocks[block.ID] = &stored
	return nil
}

func (r memoryBlockRepository) Delete(_ context.Context, id uint) error {
	if _, ok := r.blocks[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.blocks, id)
	return nil
}

func (r memoryBlockRepository) OrderStore(pageID uint) ordering.Store {
	orders := make(map[uint]*int)
	for id, block := range r.blocks {
		if block.PageID == pageID {
			orders[id] = &block.Order
		}
	}
	return &memoryOrderStore{orders: orders}
}

type memoryRoleRepository struct {
	roles       map[uint]*models.Role
	nextID      uint
	failOrderOn uint
	last        repository.RoleListOptions
}

func newMemoryRoleRepository() *memoryRoleRepository {
	return &memoryRoleRepository{roles: make(map[uint]*models.Role)}
}

func (r *memoryRoleRepository) List(_ context.Context, opts repository.RoleListOptions) ([]models.Role, int64, error) {
	r.last = opts
	roles := make([]models.Role, 0, len(r.roles))
	for _, role := range r.roles {
		roles = append(roles, *role)
	}

	less := func(a, b models.Role) bool {
		switch opts.Column {
		case "name":
			return strings.Compare(a.Name, b.Name) < 0
		case "id":
			return a.ID < b.ID
		default:
			return a.Order < b.Order
		}
	}
	sort.SliceStable(roles, func(i, j int) bool {
		if opts.Desc {
			return less(roles[j], roles[i])
		}
		return less(roles[i], roles[j])
	})

	total := int64(len(roles))
	if opts.Offset >= len(roles) {
		return []models.Role{}, total, nil
	}
	end := opts.Offset + opts.Limit
	if opts.Limit <= 0 || end > len(roles) {
		end = len(roles)
	}
	return roles[opts.Offset:end], total, nil
}

func (r *memoryRoleRepository) GetByID(_ context.Context, id uint) (*models.Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *role
	return &clone, nil
}

func (r *memoryRoleRepository) Transaction(_ context.Context, fn func(tx repository.RoleTx) error) error {
	return fn(memoryRoleTx{repo: r})
}

type memoryRoleTx struct {
	repo *memoryRoleRepository
}

func (tx memoryRoleTx) GetByID(id uint) (*models.Role, error) {
	return tx.repo.GetByID(context.Background(), id)
}

func (tx memoryRoleTx) ExistsByName(name string, excludeID uint) (bool, error) {
	for id, role := range tx.repo.roles {
		if role.Name == name && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (tx memoryRoleTx) NextOrder() (int, error) {
	if len(tx.repo.roles) == 0 {
		return 0, nil
	}
	highest := 0
	for _, role := range tx.repo.roles {
		if role.Order > highest {
			highest = role.Order
		}
	}
	return highest + 1, nil
}

func (tx memoryRoleTx) Create(role *models.Role) error {
	tx.repo.nextID++
	role.ID = tx.repo.nextID
	stored := *role
	tx.repo.roles[role.ID] = &stored
	return nil
}

func (tx memoryRoleTx) Update(role *models.Role) error {
	if _, ok := tx.repo.roles[role.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *role
	tx.repo.roles[role.ID] = &stored
	return nil
}

func (r *memoryRoleRepository) Delete(_ context.Context, id uint) error {
	if _, ok := r.roles[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.roles, id)
	return nil
}

func (r *memoryRoleRepository) OrderStore() ordering.Store {
	orders := make(map[uint]*int, len(r.roles))
	for id, role := range r.roles {
		orders[id] = &role.Order
	}
	return &memoryOrderStore{orders: orders, failOn: r.failOrderOn}
}
