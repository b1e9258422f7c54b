package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/gatehouse/internal/config"
	"github.com/hitoshi/gatehouse/internal/kvstore"
	"github.com/hitoshi/gatehouse/internal/model"
)

// runSeed は空のストアに初期データを投入する。
// 従業員が1件でも存在する場合は何もしない（再実行しても安全）。
func runSeed(cfg *config.Config) error {
	store, err := kvstore.NewFileStore(cfg.DataPath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	ctx := context.Background()
	cols := newCollections(store, kvstore.None(), nil, nil)

	existing, err := cols.employees.List(ctx, "", 0)
	if err != nil {
		return fmt.Errorf("failed to read employees: %w", err)
	}
	if len(existing) > 0 {
		slog.Info("store already seeded, skipping",
			slog.Int("employees", len(existing)),
		)
		return nil
	}

	employees := []model.Employee{
		{FullName: "田中 太郎", Role: "受付", Shift: model.ShiftDay, StartTime: "07:00", EndTime: "19:00", Status: model.EmployeeActive},
		{FullName: "佐藤 花子", Role: "受付", Shift: model.ShiftNight, StartTime: "19:00", EndTime: "07:00", Status: model.EmployeeActive},
	}
	for _, e := range employees {
		if _, err := cols.employees.Create(ctx, e); err != nil {
			return fmt.Errorf("failed to seed employee: %w", err)
		}
	}

	residents := []model.Resident{
		{FullName: "鈴木 一郎", Unit: "101", Block: "A", Phone: "+81 90 1234 5678", Status: model.ResidentActive},
		{FullName: "高橋 美咲", Unit: "305", Block: "B", Phone: "+81 80 9876 5432", Status: model.ResidentActive},
	}
	for _, r := range residents {
		if _, err := cols.residents.Create(ctx, r); err != nil {
			return fmt.Errorf("failed to seed resident: %w", err)
		}
	}

	companies := []model.Company{
		{Name: "ヤマト運輸", Kind: "配送", Status: model.CompanyActive},
		{Name: "佐川急便", Kind: "配送", Status: model.CompanyActive},
		{Name: "日本郵便", Kind: "配送", Status: model.CompanyActive},
	}
	for _, c := range companies {
		if _, err := cols.companies.Create(ctx, c); err != nil {
			return fmt.Errorf("failed to seed company: %w", err)
		}
	}

	slog.Info("seed completed",
		slog.Int("employees", len(employees)),
		slog.Int("residents", len(residents)),
		slog.Int("companies", len(companies)),
	)
	return nil
}
