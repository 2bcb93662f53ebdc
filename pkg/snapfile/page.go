package snapfile

// PageSize is the fixed size of every stored page.
const PageSize = 8192

// Page is one page of snapshot data. The format imposes no internal
// structure on it.
type Page [PageSize]byte
