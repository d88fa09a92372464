package logic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ghostfund/gfs/internal/chain"
	"github.com/ghostfund/gfs/internal/model"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&model.Project{}, &model.FundingRecord{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// fakeTransferService 链上转账服务的假实现
type fakeTransferService struct {
	enabled     bool
	registerErr error
	fundingErr  error
	fundCalls   int
}

func (f *fakeTransferService) Enabled() bool {
	return f.enabled
}

func (f *fakeTransferService) RegisterProject(ctx context.Context, project *model.Project) (*chain.Registration, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &chain.Registration{
		ProjectAddress:  "0x00000000000000000000000000000000000000aa",
		TransactionHash: "0xregistration",
	}, nil
}

func (f *fakeTransferService) ProcessFunding(ctx context.Context, projectID string, amount float64, funderAddress string) (*chain.Receipt, error) {
	if f.fundingErr != nil {
		return nil, f.fundingErr
	}
	f.fundCalls++
	return &chain.Receipt{
		Hash:      fmt.Sprintf("0xfundtx%04d", f.fundCalls),
		From:      funderAddress,
		Value:     amount,
		Timestamp: time.Now(),
	}, nil
}

func validInput() CreateProjectInput {
	return CreateProjectInput{
		Title:        "T",
		Description:  strings.Repeat("D", 100),
		FundingGoal:  10,
		OwnerAddress: "0xabc",
	}
}

func TestCreateProjectDefaults(t *testing.T) {
	logic := NewProjectLogic(openTestDB(t), &fakeTransferService{})
	before := time.Now()

	result, err := logic.CreateProject(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	p := result.Project
	if p.ID == "" {
		t.Error("project id is empty")
	}
	if p.CurrentFunding != 0 {
		t.Errorf("current funding = %f, want 0", p.CurrentFunding)
	}
	if p.Status != model.ProjectStatusActive {
		t.Errorf("status = %s, want active", p.Status)
	}
	if p.Category != "other" {
		t.Errorf("category = %q, want other", p.Category)
	}

	// deadline = 创建时间 + 30天（±1秒）
	wantDeadline := before.Add(30 * 24 * time.Hour)
	if diff := p.Deadline.Sub(wantDeadline); diff < -time.Second || diff > time.Second {
		t.Errorf("deadline off by %v", diff)
	}

	if result.Linked {
		t.Error("disabled chain service should not link the project")
	}
}

func TestCreateProjectCustomDuration(t *testing.T) {
	logic := NewProjectLogic(openTestDB(t), &fakeTransferService{})

	input := validInput()
	input.Duration = 7
	input.Category = "technology"
	input.Tags = []string{"privacy", "infra"}

	result, err := logic.CreateProject(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	wantDeadline := time.Now().Add(7 * 24 * time.Hour)
	if diff := result.Project.Deadline.Sub(wantDeadline); diff < -time.Second || diff > time.Second {
		t.Errorf("deadline off by %v", diff)
	}
	if result.Project.Category != "technology" {
		t.Errorf("category = %q, want technology", result.Project.Category)
	}

	// 标签应经序列化后原样读回
	loaded, err := logic.GetProject(context.Background(), result.Project.ID)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if len(loaded.Tags) != 2 || loaded.Tags[0] != "privacy" {
		t.Errorf("tags = %v, want [privacy infra]", loaded.Tags)
	}
}

func TestCreateProjectValidation(t *testing.T) {
	logic := NewProjectLogic(openTestDB(t), &fakeTransferService{})

	tests := []struct {
		name   string
		mutate func(*CreateProjectInput)
	}{
		{"missing title", func(in *CreateProjectInput) { in.Title = "" }},
		{"title too long", func(in *CreateProjectInput) { in.Title = strings.Repeat("x", model.TitleMaxLength+1) }},
		{"missing description", func(in *CreateProjectInput) { in.Description = "" }},
		{"description too long", func(in *CreateProjectInput) { in.Description = strings.Repeat("x", model.DescriptionMaxLength+1) }},
		{"zero goal", func(in *CreateProjectInput) { in.FundingGoal = 0 }},
		{"negative goal", func(in *CreateProjectInput) { in.FundingGoal = -5 }},
		{"missing owner", func(in *CreateProjectInput) { in.OwnerAddress = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)

			_, err := logic.CreateProject(context.Background(), input)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestCreateProjectChainLinked(t *testing.T) {
	logic := NewProjectLogic(openTestDB(t), &fakeTransferService{enabled: true})

	result, err := logic.CreateProject(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	if !result.Linked {
		t.Fatal("expected project to be linked")
	}
	if result.Project.ContractAddress == "" || result.Project.TransactionHash == "" {
		t.Error("chain registration fields not stored")
	}
}

func TestCreateProjectChainFailureIsNonFatal(t *testing.T) {
	logic := NewProjectLogic(openTestDB(t), &fakeTransferService{
		enabled:     true,
		registerErr: errors.New("rpc down"),
	})

	result, err := logic.CreateProject(context.Background(), validInput())
	if err != nil {
		t.Fatalf("chain failure must not fail creation, got %v", err)
	}

	if result.Linked {
		t.Error("failed registration must not mark the project linked")
	}
	if result.Project.ContractAddress != "" {
		t.Error("contract address should stay empty after failed registration")
	}

	// 项目仍应已持久化
	if _, err := logic.GetProject(context.Background(), result.Project.ID); err != nil {
		t.Errorf("project not persisted: %v", err)
	}
}

func TestFundProjectNotFound(t *testing.T) {
	logic := NewProjectLogic(openTestDB(t), &fakeTransferService{})

	_, err := logic.FundProject(context.Background(), uuid.NewString(), 5, "0xfund1")
	if !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestFundProjectValidation(t *testing.T) {
	logic := NewProjectLogic(openTestDB(t), &fakeTransferService{})

	tests := []struct {
		name      string
		projectID string
		amount    float64
		funder    string
	}{
		{"missing project id", "", 5, "0xfund1"},
		{"zero amount", "some-id", 0, "0xfund1"},
		{"negative amount", "some-id", -3, "0xfund1"},
		{"missing funder", "some-id", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := logic.FundProject(context.Background(), tt.projectID, tt.amount, tt.funder)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestFundProjectStateConflict(t *testing.T) {
	db := openTestDB(t)
	logic := NewProjectLogic(db, &fakeTransferService{})

	for _, status := range []model.ProjectStatus{model.ProjectStatusFunded, model.ProjectStatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			project := seedProject(t, db, func(p *model.Project) {
				p.Status = status
				p.CurrentFunding = 3
			})

			_, err := logic.FundProject(context.Background(), project.ID, 5, "0xfund1")
			var stateErr *StateConflictError
			if !errors.As(err, &stateErr) {
				t.Fatalf("expected StateConflictError, got %v", err)
			}
			if stateErr.Status != status {
				t.Errorf("error status = %s, want %s", stateErr.Status, status)
			}
			if !strings.Contains(err.Error(), string(status)) {
				t.Errorf("error message %q does not carry the current status", err.Error())
			}

			// 不应产生任何变更
			reloaded, err := logic.GetProject(context.Background(), project.ID)
			if err != nil {
				t.Fatalf("GetProject: %v", err)
			}
			if reloaded.CurrentFunding != 3 {
				t.Errorf("current funding changed to %f", reloaded.CurrentFunding)
			}
			if len(reloaded.Transactions) != 0 {
				t.Errorf("unexpected funding records: %d", len(reloaded.Transactions))
			}
		})
	}
}

func TestFundProjectChainFailureAborts(t *testing.T) {
	db := openTestDB(t)
	logic := NewProjectLogic(db, &fakeTransferService{fundingErr: errors.New("rpc down")})

	project := seedProject(t, db, nil)

	_, err := logic.FundProject(context.Background(), project.ID, 5, "0xfund1")
	if err == nil {
		t.Fatal("expected error when chain call fails")
	}

	reloaded, err := logic.GetProject(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if reloaded.CurrentFunding != 0 {
		t.Errorf("current funding mutated to %f after failed chain call", reloaded.CurrentFunding)
	}
	if len(reloaded.Transactions) != 0 {
		t.Errorf("funding record created after failed chain call")
	}
}

// TestFundProjectScenario 端到端出资流程：
// 目标10，出资4后仍为active，再出资6达标翻转为funded，之后拒绝继续出资。
func TestFundProjectScenario(t *testing.T) {
	db := openTestDB(t)
	fake := &fakeTransferService{}
	logic := NewProjectLogic(db, fake)

	created, err := logic.CreateProject(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	projectID := created.Project.ID

	// 第一笔出资：4/10
	result, err := logic.FundProject(context.Background(), projectID, 4, "0xfund1")
	if err != nil {
		t.Fatalf("first FundProject: %v", err)
	}
	if result.Project.CurrentFunding != 4 {
		t.Errorf("current funding = %f, want 4", result.Project.CurrentFunding)
	}
	if result.Project.Status != model.ProjectStatusActive {
		t.Errorf("status = %s, want active", result.Project.Status)
	}
	if len(result.Project.Transactions) != 1 {
		t.Errorf("got %d transactions, want 1", len(result.Project.Transactions))
	}
	if result.Receipt == nil || result.Receipt.Hash == "" {
		t.Error("missing transaction receipt")
	}
	assertFundingInvariant(t, result.Project)

	// 第二笔出资：10/10，达标翻转
	result, err = logic.FundProject(context.Background(), projectID, 6, "0xfund2")
	if err != nil {
		t.Fatalf("second FundProject: %v", err)
	}
	if result.Project.CurrentFunding != 10 {
		t.Errorf("current funding = %f, want 10", result.Project.CurrentFunding)
	}
	if result.Project.Status != model.ProjectStatusFunded {
		t.Errorf("status = %s, want funded", result.Project.Status)
	}
	if len(result.Project.Transactions) != 2 {
		t.Errorf("got %d transactions, want 2", len(result.Project.Transactions))
	}
	assertFundingInvariant(t, result.Project)

	// 出资记录的交易哈希来自链上回执
	matched := false
	for _, tx := range result.Project.Transactions {
		if tx.TransactionHash == result.Receipt.Hash {
			matched = true
		}
	}
	if !matched {
		t.Error("no funding record carries the receipt hash")
	}

	// 达标后拒绝继续出资
	_, err = logic.FundProject(context.Background(), projectID, 1, "0xfund3")
	var stateErr *StateConflictError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected StateConflictError after the goal is met, got %v", err)
	}
}

// TestFundProjectOvershoot 单笔出资超过目标也应翻转为funded
func TestFundProjectOvershoot(t *testing.T) {
	db := openTestDB(t)
	logic := NewProjectLogic(db, &fakeTransferService{})

	project := seedProject(t, db, nil)

	result, err := logic.FundProject(context.Background(), project.ID, 25, "0xwhale")
	if err != nil {
		t.Fatalf("FundProject: %v", err)
	}
	if result.Project.Status != model.ProjectStatusFunded {
		t.Errorf("status = %s, want funded", result.Project.Status)
	}
	if result.Project.CurrentFunding != 25 {
		t.Errorf("current funding = %f, want 25", result.Project.CurrentFunding)
	}
	assertFundingInvariant(t, result.Project)
}

func TestGetProjectsFilters(t *testing.T) {
	db := openTestDB(t)
	logic := NewProjectLogic(db, &fakeTransferService{})

	base := time.Now().Add(-time.Hour)
	seedProjectAt(t, db, base, func(p *model.Project) {
		p.Title = "Project Alpha"
		p.Description = "privacy-focused infrastructure"
		p.Category = "technology"
		p.Status = model.ProjectStatusActive
	})
	seedProjectAt(t, db, base.Add(time.Minute), func(p *model.Project) {
		p.Title = "Beta"
		p.Description = "mentions ALPHA in passing"
		p.Category = "social"
		p.Status = model.ProjectStatusActive
	})
	seedProjectAt(t, db, base.Add(2*time.Minute), func(p *model.Project) {
		p.Title = "Gamma"
		p.Description = "unrelated"
		p.Category = "technology"
		p.Status = model.ProjectStatusFunded
	})

	ctx := context.Background()

	// 不过滤，按创建时间倒序
	all, err := logic.GetProjects(ctx, ListFilters{})
	if err != nil {
		t.Fatalf("GetProjects: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d projects, want 3", len(all))
	}
	if all[0].Title != "Gamma" || all[2].Title != "Project Alpha" {
		t.Errorf("projects not ordered newest first: %s, %s, %s", all[0].Title, all[1].Title, all[2].Title)
	}

	// "all" 等价于不过滤
	if got, _ := logic.GetProjects(ctx, ListFilters{Status: "all", Category: "all"}); len(got) != 3 {
		t.Errorf("filter 'all' returned %d projects, want 3", len(got))
	}

	// 状态过滤
	active, err := logic.GetProjects(ctx, ListFilters{Status: "active"})
	if err != nil {
		t.Fatalf("GetProjects: %v", err)
	}
	if len(active) != 2 {
		t.Errorf("got %d active projects, want 2", len(active))
	}
	for _, p := range active {
		if p.Status != model.ProjectStatusActive {
			t.Errorf("status filter leaked project with status %s", p.Status)
		}
	}

	// 分类过滤
	tech, err := logic.GetProjects(ctx, ListFilters{Category: "technology"})
	if err != nil {
		t.Fatalf("GetProjects: %v", err)
	}
	if len(tech) != 2 {
		t.Errorf("got %d technology projects, want 2", len(tech))
	}

	// 搜索：标题或描述的大小写不敏感子串匹配
	found, err := logic.GetProjects(ctx, ListFilters{Search: "alpha"})
	if err != nil {
		t.Fatalf("GetProjects: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("search 'alpha' returned %d projects, want 2", len(found))
	}

	// 组合过滤
	combined, err := logic.GetProjects(ctx, ListFilters{Status: "active", Category: "technology"})
	if err != nil {
		t.Fatalf("GetProjects: %v", err)
	}
	if len(combined) != 1 || combined[0].Title != "Project Alpha" {
		t.Errorf("combined filter returned unexpected result: %v", combined)
	}
}

func TestGetProjectStats(t *testing.T) {
	db := openTestDB(t)
	logic := NewProjectLogic(db, &fakeTransferService{})

	seedProject(t, db, func(p *model.Project) {
		p.Status = model.ProjectStatusActive
		p.CurrentFunding = 4
	})
	seedProject(t, db, func(p *model.Project) {
		p.Status = model.ProjectStatusFunded
		p.CurrentFunding = 10
	})
	seedProject(t, db, func(p *model.Project) {
		p.Status = model.ProjectStatusCancelled
	})

	stats, err := logic.GetProjectStats(context.Background())
	if err != nil {
		t.Fatalf("GetProjectStats: %v", err)
	}

	if got := stats["totalProjects"].(int64); got != 3 {
		t.Errorf("totalProjects = %d, want 3", got)
	}
	if got := stats["activeProjects"].(int64); got != 1 {
		t.Errorf("activeProjects = %d, want 1", got)
	}
	if got := stats["fundedProjects"].(int64); got != 1 {
		t.Errorf("fundedProjects = %d, want 1", got)
	}
	if got := stats["cancelledProjects"].(int64); got != 1 {
		t.Errorf("cancelledProjects = %d, want 1", got)
	}
	if got := stats["totalRaised"].(float64); got != 14 {
		t.Errorf("totalRaised = %f, want 14", got)
	}
}

// assertFundingInvariant 校验 current_funding 等于全部出资之和
func assertFundingInvariant(t *testing.T, project *model.Project) {
	t.Helper()

	var sum float64
	for _, tx := range project.Transactions {
		sum += tx.Amount
	}
	if sum != project.CurrentFunding {
		t.Errorf("current funding %f != sum of transactions %f", project.CurrentFunding, sum)
	}
}

func seedProject(t *testing.T, db *gorm.DB, mutate func(*model.Project)) *model.Project {
	t.Helper()
	return seedProjectAt(t, db, time.Now(), mutate)
}

func seedProjectAt(t *testing.T, db *gorm.DB, createdAt time.Time, mutate func(*model.Project)) *model.Project {
	t.Helper()

	project := &model.Project{
		ID:           uuid.NewString(),
		CreatedAt:    createdAt,
		Title:        "Seed Project",
		Description:  "seed description",
		Category:     "other",
		FundingGoal:  10,
		Status:       model.ProjectStatusActive,
		OwnerAddress: "0xowner",
		Deadline:     createdAt.Add(30 * 24 * time.Hour),
	}
	if mutate != nil {
		mutate(project)
	}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return project
}
