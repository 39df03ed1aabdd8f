// internal/simulation/prs.go
// Package simulation holds a canned set of pull requests for exercising the
// settlement flow end to end without a forge attached (the --simulate flag).
package simulation

import (
	"math/rand"

	"repobounty/internal/models"
)

const demoWallet = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

// SamplePRs spans the pricing bands and edge cases: a security fix, a
// refactor, a typed feature, a trivial change, a secret leak and a high-risk
// auth change.
func SamplePRs() []*models.Submission {
	return []*models.Submission{
		{
			ID:            "sim-001",
			Title:         "fix: XSS vulnerability in comment renderer",
			Author:        "sim-alice",
			Repo:          "acme/webapp",
			WalletAddress: demoWallet,
			Diff: `export function renderComment(raw: string): string {
  // Sanitize before injecting into the DOM
  const clean = sanitize(raw).replace(/<script/gi, "");
  if (!clean) {
    throw new Error("empty comment after sanitization");
  }
  return clean;
}
export const DANGEROUS_TAGS = ["script", "iframe", "object"];
`,
			FilesChanged: 2,
			Additions:    28,
			Deletions:    6,
		},
		{
			ID:            "sim-002",
			Title:         "refactor: extract session manager class",
			Author:        "sim-bob",
			Repo:          "acme/webapp",
			WalletAddress: demoWallet,
			Diff: `export class SessionManager {
  private timers: Map<string, number> = new Map();

  start(id: string): void {
    const timer = setInterval(() => this.refresh(id), 30_000);
    this.timers.set(id, timer);
  }

  stop(id: string): void {
    const timer = this.timers.get(id);
    if (timer) {
      clearInterval(timer);
      this.timers.delete(id);
    }
  }
}
` + longPadding(45),
			FilesChanged: 3,
			Additions:    58,
			Deletions:    14,
		},
		{
			ID:            "sim-003",
			Title:         "feat: typed pagination helper",
			Author:        "sim-carol",
			Repo:          "acme/api",
			WalletAddress: demoWallet,
			Diff: `export interface Page<T> { items: T[]; cursor: string }
export function paginate<T>(items: T[], size: number): Page<T> {
  try {
    if (!size || size < 1) {
      throw new Error("page size must be positive");
    }
    const slice: Array<T> = items.slice(0, size);
    return { items: slice, cursor: String(size) };
  } catch (e) {
    throw new Error("pagination failed");
  }
}
` + longPadding(25),
			FilesChanged: 1,
			Additions:    36,
			Deletions:    2,
		},
		{
			ID:            "sim-004",
			Title:         "docs: fix typo in readme",
			Author:        "sim-dave",
			Repo:          "acme/api",
			WalletAddress: demoWallet,
			Diff:          "- teh settlement engine\n+ the settlement engine\n",
			FilesChanged:  1,
			Additions:     1,
			Deletions:     1,
		},
		{
			ID:            "sim-005",
			Title:         "chore: add deployment config",
			Author:        "sim-eve",
			Repo:          "acme/api",
			WalletAddress: demoWallet,
			Diff: `const API_KEY = "sk_live_51HxTest000FAKE"
export const deployConfig = { key: API_KEY };
`,
			FilesChanged: 1,
			Additions:    12,
			Deletions:    0,
		},
		{
			ID:            "sim-006",
			Title:         "fix: token refresh race in auth.service",
			Author:        "sim-frank",
			Repo:          "acme/webapp",
			WalletAddress: demoWallet,
			Diff: `import { refresh } from "./auth.service";
export function scheduleRefresh(token: string): void {
  try {
    refresh(token);
  } catch (e) {
    throw new Error("refresh failed");
  }
}
` + longPadding(20),
			FilesChanged: 1,
			Additions:    26,
			Deletions:    4,
		},
	}
}

// FindPR returns the canned submission with the given id, or nil when no
// sample carries it.
func FindPR(id string) *models.Submission {
	for _, pr := range SamplePRs() {
		if pr.ID == id {
			return pr
		}
	}
	return nil
}

// RandomPR picks one of the canned submissions.
func RandomPR() *models.Submission {
	prs := SamplePRs()
	return prs[rand.Intn(len(prs))]
}

func longPadding(lines int) string {
	padding := ""
	for i := 0; i < lines; i++ {
		padding += "// context line retained from surrounding file\n"
	}
	return padding
}
