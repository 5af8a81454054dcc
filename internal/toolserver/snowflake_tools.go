package toolserver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/pulse/internal/domain"
	"github.com/bnema/pulse/internal/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

const (
	defaultWarehouseLimit = 5
	defaultSessionTTL     = 4 * time.Hour
	authExternalBrowser   = "externalbrowser"
	authPassword          = "snowflake"

	methodSSO         = "sso"
	methodCredentials = "credentials"
)

var errNotConnected = errors.New("Not connected to Snowflake. Please connect first using connect_snowflake_sso or connect_snowflake_credentials.")

type warehouseSession struct {
	conn        ports.WarehouseConn
	account     string
	user        string
	method      string
	connectedAt time.Time
	expiresAt   time.Time
}

type computeCost struct {
	Credits    float64 `json:"total_credits_used"`
	Cost       float64 `json:"estimated_compute_cost"`
	Warehouses int64   `json:"warehouses_used"`
	Samples    int64   `json:"metering_samples"`
}

type storageCost struct {
	StorageGB  float64 `json:"avg_storage_gb"`
	StageGB    float64 `json:"avg_stage_gb"`
	FailsafeGB float64 `json:"avg_failsafe_gb"`
	Cost       float64 `json:"estimated_storage_cost"`
}

type overallCosts struct {
	Success        bool        `json:"success"`
	PeriodDays     int         `json:"period_days"`
	StartDate      string      `json:"start_date"`
	EndDate        string      `json:"end_date"`
	Compute        computeCost `json:"compute_metrics"`
	Storage        storageCost `json:"storage_metrics"`
	TotalCost      float64     `json:"total_cost"`
	TotalEstimated float64     `json:"total_estimated_cost"`
	Currency       string      `json:"currency"`
	CreditPrice    float64     `json:"credit_price"`
	StoragePrice   float64     `json:"storage_price_per_gb_month"`
	Note           string      `json:"note"`
}

type warehouseCost struct {
	Name       string  `json:"name"`
	Credits    float64 `json:"credits"`
	Cost       float64 `json:"cost"`
	Samples    int64   `json:"metering_samples"`
	AvgCredits float64 `json:"avg_credits_per_sample"`
	MaxCredits float64 `json:"max_credits_single_sample"`
	FirstUsage string  `json:"first_usage,omitempty"`
	LastUsage  string  `json:"last_usage,omitempty"`
	Percentage float64 `json:"percentage_of_total"`
}

type topWarehouses struct {
	Success        bool            `json:"success"`
	PeriodDays     int             `json:"period_days"`
	Warehouses     []warehouseCost `json:"warehouses"`
	TotalCredits   float64         `json:"total_credits_top_warehouses"`
	EstimatedTotal float64         `json:"estimated_total_cost"`
}

type snowflakeSummary struct {
	Success      bool           `json:"success"`
	AnalysisDate string         `json:"analysis_date"`
	PeriodDays   int            `json:"period_days"`
	Overall      overallCosts   `json:"overall_costs"`
	Top          topWarehouses  `json:"top_warehouses"`
	Summary      map[string]any `json:"summary"`
}

func (s *Server) registerSnowflakeTools() {
	s.addTool(mcp.NewTool("connect_snowflake_sso",
		mcp.WithDescription("Connect to Snowflake using SSO (external browser authentication)"),
		mcp.WithString("account", mcp.Required(), mcp.Description("Account identifier such as xy12345.us-east-1, or the account URL")),
		mcp.WithString("user", mcp.Required(), mcp.Description("Snowflake user name")),
	), s.connectSSO)

	s.addTool(mcp.NewTool("connect_snowflake_credentials",
		mcp.WithDescription("Connect to Snowflake using username and password"),
		mcp.WithString("account", mcp.Required(), mcp.Description("Account identifier or account URL")),
		mcp.WithString("user", mcp.Required(), mcp.Description("Snowflake user name")),
		mcp.WithString("password", mcp.Required(), mcp.Description("Snowflake password")),
		mcp.WithString("role", mcp.Description("Role to assume")),
		mcp.WithString("warehouse", mcp.Description("Warehouse to use")),
	), s.connectCredentials)

	s.addTool(mcp.NewTool("connect_snowflake_auto",
		mcp.WithDescription("Connect to Snowflake from SNOWFLAKE_* environment settings"),
	), s.connectAuto)

	daysArg := mcp.WithNumber("days", mcp.Description("Number of days to analyze"), mcp.DefaultNumber(defaultCostDays))

	s.addTool(mcp.NewTool("get_snowflake_overall_costs",
		mcp.WithDescription("Get overall Snowflake compute and storage costs for a period"),
		daysArg,
	), s.snowflakeOverallCosts)

	s.addTool(mcp.NewTool("get_snowflake_top_warehouses",
		mcp.WithDescription("Get the most expensive Snowflake warehouses for a period"),
		daysArg,
		mcp.WithNumber("limit", mcp.Description("Number of warehouses"), mcp.DefaultNumber(defaultWarehouseLimit)),
	), s.snowflakeTopWarehouses)

	s.addTool(mcp.NewTool("get_snowflake_cost_summary",
		mcp.WithDescription("Get a Snowflake cost summary with overall costs and top warehouses"),
		daysArg,
	), s.snowflakeCostSummary)

	s.addTool(mcp.NewTool("get_snowflake_cost_report",
		mcp.WithDescription("Get a formatted Snowflake cost report"),
		daysArg,
	), s.snowflakeCostReport)
}

func (s *Server) connectSSO(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	account, user, err := accountAndUser(args)
	if err != nil {
		return argumentError(err)
	}

	return s.connect(ctx, methodSSO, domain.WarehouseCredentials{
		Account:       account,
		User:          user,
		Authenticator: authExternalBrowser,
		Role:          s.deps.Config.Snowflake.Role,
		Warehouse:     s.deps.Config.Snowflake.Warehouse,
	})
}

func (s *Server) connectCredentials(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	account, user, err := accountAndUser(args)
	if err != nil {
		return argumentError(err)
	}
	password, _ := args["password"].(string)
	if password == "" {
		return argumentError(errors.New("password is required"))
	}

	return s.connect(ctx, methodCredentials, domain.WarehouseCredentials{
		Account:       account,
		User:          user,
		Password:      password,
		Authenticator: authPassword,
		Role:          stringArg(args, "role", s.deps.Config.Snowflake.Role),
		Warehouse:     stringArg(args, "warehouse", s.deps.Config.Snowflake.Warehouse),
	})
}

// connectAuto reuses a live session, otherwise connects from configuration.
func (s *Server) connectAuto(ctx context.Context, _ map[string]any) (*mcp.CallToolResult, error) {
	if session := s.liveSession(); session != nil {
		payload := sessionPayload(session)
		payload["reused"] = true
		payload["message"] = "Already connected to Snowflake"
		return jsonResult(payload)
	}

	cfg := s.deps.Config.Snowflake
	if cfg.Account == "" || cfg.User == "" {
		return jsonResult(map[string]any{
			"success": false,
			"error":   "missing SNOWFLAKE_ACCOUNT or SNOWFLAKE_USER",
			"message": "Set SNOWFLAKE_ACCOUNT and SNOWFLAKE_USER, or use connect_snowflake_sso or connect_snowflake_credentials",
		})
	}

	authenticator := strings.ToLower(cfg.Authenticator)
	if authenticator == "" {
		authenticator = authExternalBrowser
	}
	credentials := domain.WarehouseCredentials{
		Account:   cfg.Account,
		User:      cfg.User,
		Role:      cfg.Role,
		Warehouse: cfg.Warehouse,
	}

	if authenticator != authExternalBrowser {
		password, err := s.configuredPassword(ctx)
		if err != nil {
			return failure(err, nil)
		}
		if password != "" {
			credentials.Password = password
			credentials.Authenticator = authPassword
			return s.connect(ctx, methodCredentials, credentials)
		}
	}

	credentials.Authenticator = authExternalBrowser
	return s.connect(ctx, methodSSO, credentials)
}

func (s *Server) configuredPassword(ctx context.Context) (string, error) {
	cfg := s.deps.Config.Snowflake
	if cfg.Password != "" || cfg.PasswordRef == "" {
		return cfg.Password, nil
	}
	if s.deps.Secrets == nil {
		return "", errors.New("SNOWFLAKE_PASSWORD_REF is set but no secret store is configured")
	}

	password, err := s.deps.Secrets.Get(ctx, cfg.PasswordRef)
	if err != nil {
		return "", fmt.Errorf("resolve SNOWFLAKE_PASSWORD_REF: %w", err)
	}
	return password, nil
}

func (s *Server) connect(ctx context.Context, method string, credentials domain.WarehouseCredentials) (*mcp.CallToolResult, error) {
	if s.deps.Warehouse == nil {
		return failure(fmt.Errorf("snowflake %w", errProviderMissing), nil)
	}

	conn, err := s.deps.Warehouse.Connect(ctx, credentials)
	if err != nil {
		return failure(err, map[string]any{"account": credentials.Account, "user": credentials.User, "method": method})
	}

	now := s.deps.Clock.Now()
	ttl := s.deps.Config.Snowflake.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	session := &warehouseSession{
		conn:        conn,
		account:     credentials.Account,
		user:        credentials.User,
		method:      method,
		connectedAt: now,
		expiresAt:   now.Add(ttl),
	}

	s.mu.Lock()
	if err := s.dropWarehouseLocked(); err != nil {
		s.deps.Logger.Warn("close previous snowflake connection", zap.Error(err))
	}
	s.warehouse = session
	s.mu.Unlock()

	s.deps.Logger.Info("connected to snowflake", zap.String("account", session.account), zap.String("method", method))

	payload := sessionPayload(session)
	payload["message"] = "Successfully connected to Snowflake using " + methodLabel(method)
	return jsonResult(payload)
}

func sessionPayload(session *warehouseSession) map[string]any {
	return map[string]any{
		"success":      true,
		"account":      session.account,
		"user":         session.user,
		"method":       session.method,
		"connected_at": session.connectedAt.UTC().Format(time.RFC3339),
		"expires_at":   session.expiresAt.UTC().Format(time.RFC3339),
	}
}

func methodLabel(method string) string {
	if method == methodSSO {
		return "SSO"
	}
	return "username and password"
}

// liveSession returns the session when it has not expired, dropping it otherwise.
func (s *Server) liveSession() *warehouseSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.warehouse == nil {
		return nil
	}
	if !s.deps.Clock.Now().Before(s.warehouse.expiresAt) {
		if err := s.dropWarehouseLocked(); err != nil {
			s.deps.Logger.Warn("close expired snowflake connection", zap.Error(err))
		}
		return nil
	}
	return s.warehouse
}

func (s *Server) dropWarehouseLocked() error {
	if s.warehouse == nil {
		return nil
	}
	conn := s.warehouse.conn
	s.warehouse = nil
	return conn.Close()
}

func (s *Server) snowflakeOverallCosts(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	days, err := costDays(args)
	if err != nil {
		return argumentError(err)
	}
	session := s.liveSession()
	if session == nil {
		return failure(errNotConnected, nil)
	}

	overall, err := s.overallCosts(ctx, session.conn, days)
	if err != nil {
		return failure(err, nil)
	}
	return jsonResult(overall)
}

func (s *Server) snowflakeTopWarehouses(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	days, err := costDays(args)
	if err != nil {
		return argumentError(err)
	}
	limit, err := intArg(args, "limit", defaultWarehouseLimit, 1)
	if err != nil {
		return argumentError(err)
	}
	session := s.liveSession()
	if session == nil {
		return failure(errNotConnected, nil)
	}

	top, err := s.topWarehouses(ctx, session.conn, days, limit)
	if err != nil {
		return failure(err, nil)
	}
	return jsonResult(top)
}

func (s *Server) snowflakeCostSummary(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	days, err := costDays(args)
	if err != nil {
		return argumentError(err)
	}
	session := s.liveSession()
	if session == nil {
		return failure(errNotConnected, nil)
	}

	summary, err := s.costSummary(ctx, session.conn, days)
	if err != nil {
		return failure(err, nil)
	}
	return jsonResult(summary)
}

func (s *Server) snowflakeCostReport(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	days, err := costDays(args)
	if err != nil {
		return argumentError(err)
	}
	session := s.liveSession()
	if session == nil {
		return mcp.NewToolResultText("❌ Snowflake analysis failed: " + errNotConnected.Error()), nil
	}

	summary, err := s.costSummary(ctx, session.conn, days)
	if err != nil {
		return mcp.NewToolResultText("❌ Snowflake analysis failed: " + err.Error()), nil
	}
	return mcp.NewToolResultText(snowflakeReport(summary)), nil
}

func (s *Server) window(days int) (time.Time, time.Time) {
	end := s.deps.Clock.Now().UTC()
	return end.AddDate(0, 0, -days), end
}

func (s *Server) prices() (float64, float64) {
	credit, storage := s.deps.Config.Snowflake.CreditPrice, s.deps.Config.Snowflake.StoragePrice
	if credit <= 0 {
		credit = 2.0
	}
	if storage <= 0 {
		storage = 0.023
	}
	return credit, storage
}

func (s *Server) overallCosts(ctx context.Context, conn ports.WarehouseConn, days int) (overallCosts, error) {
	start, end := s.window(days)
	compute, err := conn.ComputeUsage(ctx, start, end)
	if err != nil {
		return overallCosts{}, err
	}
	storage, err := conn.StorageUsage(ctx, start, end)
	if err != nil {
		return overallCosts{}, err
	}

	creditPrice, storagePrice := s.prices()
	computeValue := compute.Credits * creditPrice
	storageValue := storage.TotalGB() * storagePrice * float64(days) / 30
	total := round2(computeValue + storageValue)

	return overallCosts{
		Success:    true,
		PeriodDays: days,
		StartDate:  start.Format(dateLayout),
		EndDate:    end.Format(dateLayout),
		Compute: computeCost{
			Credits:    round2(compute.Credits),
			Cost:       round2(computeValue),
			Warehouses: compute.Warehouses,
			Samples:    compute.Samples,
		},
		Storage: storageCost{
			StorageGB:  round2(storage.StorageGB),
			StageGB:    round2(storage.StageGB),
			FailsafeGB: round2(storage.FailsafeGB),
			Cost:       round2(storageValue),
		},
		TotalCost:      total,
		TotalEstimated: total,
		Currency:       "USD",
		CreditPrice:    creditPrice,
		StoragePrice:   storagePrice,
		Note:           "Costs are estimated from standard pricing; actual costs depend on your contract and region.",
	}, nil
}

func (s *Server) topWarehouses(ctx context.Context, conn ports.WarehouseConn, days int, limit int) (topWarehouses, error) {
	start, end := s.window(days)
	usage, err := conn.TopWarehouses(ctx, start, end, limit)
	if err != nil {
		return topWarehouses{}, err
	}

	creditPrice, _ := s.prices()
	total := 0.0
	for _, u := range usage {
		total += u.Credits
	}

	result := topWarehouses{Success: true, PeriodDays: days, Warehouses: make([]warehouseCost, 0, len(usage))}
	for _, u := range usage {
		row := warehouseCost{
			Name:       u.Name,
			Credits:    round2(u.Credits),
			Cost:       round2(u.Credits * creditPrice),
			Samples:    u.Samples,
			AvgCredits: round2(u.AvgCredits),
			MaxCredits: round2(u.MaxCredits),
		}
		if !u.FirstUsage.IsZero() {
			row.FirstUsage = u.FirstUsage.UTC().Format(time.RFC3339)
		}
		if !u.LastUsage.IsZero() {
			row.LastUsage = u.LastUsage.UTC().Format(time.RFC3339)
		}
		if total > 0 {
			row.Percentage = round2(u.Credits / total * 100)
		}
		result.Warehouses = append(result.Warehouses, row)
	}
	result.TotalCredits = round2(total)
	result.EstimatedTotal = round2(total * creditPrice)

	return result, nil
}

func (s *Server) costSummary(ctx context.Context, conn ports.WarehouseConn, days int) (snowflakeSummary, error) {
	overall, err := s.overallCosts(ctx, conn, days)
	if err != nil {
		return snowflakeSummary{}, err
	}
	top, err := s.topWarehouses(ctx, conn, days, defaultWarehouseLimit)
	if err != nil {
		return snowflakeSummary{}, err
	}

	summary := map[string]any{
		"total_estimated_cost": overall.TotalCost,
		"active_warehouses":    overall.Compute.Warehouses,
	}
	if overall.TotalCost > 0 {
		summary["compute_percentage"] = round2(overall.Compute.Cost / overall.TotalCost * 100)
		summary["storage_percentage"] = round2(overall.Storage.Cost / overall.TotalCost * 100)
	}
	if len(top.Warehouses) > 0 {
		summary["most_expensive_warehouse"] = map[string]any{
			"name": top.Warehouses[0].Name,
			"cost": top.Warehouses[0].Cost,
		}
	}

	return snowflakeSummary{
		Success:      true,
		AnalysisDate: s.deps.Clock.Now().UTC().Format(time.RFC3339),
		PeriodDays:   days,
		Overall:      overall,
		Top:          top,
		Summary:      summary,
	}, nil
}

func accountAndUser(args map[string]any) (string, string, error) {
	account := stringArg(args, "account", "")
	user := stringArg(args, "user", "")
	if account == "" || user == "" {
		return "", "", errors.New("account and user are required")
	}
	return account, user, nil
}

// warehouseStatus reports the current session for the status resource.
func (s *Server) warehouseStatus() map[string]any {
	session := s.liveSession()
	if session == nil {
		return map[string]any{"connected": false}
	}
	status := sessionPayload(session)
	delete(status, "success")
	status["connected"] = true
	return status
}
