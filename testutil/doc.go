// Package testutil provides a test harness for modules.
//
// A Harness owns a private global graph and module context, so tests never
// share singletons. Components found in a built tree can be started with
// automatic cleanup when the test ends:
//
//	func TestBooks(t *testing.T) {
//	    h := testutil.New(t).WithProps(map[string]string{
//	        "DATABASE__CONNECTION_URL": ":memory:",
//	    })
//	    root := h.Build(AppModule{})
//	    h.Start(root)
//
//	    svc := testutil.MustGet[*BookService](t, root)
//	    // ...
//	}
package testutil
