// Package models defines the core domain models for the Equi ledger.
//
// # Models
//
//   - Subscription: a recurring cost owned by one account, with derived
//     cost-sharing state (CostForMe, SharedWith) and per-month payment
//     tracking (PaidMonths)
//   - Split: a record dividing one cost among named participants, optionally
//     linked to a Subscription it finances
//   - Member: one participant's share inside a Split, with a settlement flag
//   - CategoryTotal: a derived per-category sum, never stored
//
// Participants are identified by name strings; only the owner holds an
// account. The owner always appears in a Split as the member named "Me".
//
// # Design Principles
//
//  1. **No object cycles**: the subscription<->split relationship is a
//     nullable ID on Split, never a pointer. Derived fields on Subscription
//     are recomputed and written through the service layer.
//  2. **Integer money**: amounts are whole currency units (int64), never
//     floating point.
//  3. **Errors as values**: this package owns the sentinel error taxonomy;
//     callers classify with errors.Is.
package models
