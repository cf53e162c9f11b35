// Package lockfile reads npm's package-lock.json.
//
// The lockfile records the exact version npm installed for every package in
// node_modules. It is used as a fallback source of installed versions when a
// package's own package.json is not readable from node_modules.
//
// Both layouts are understood:
//   - lockfileVersion 2 and 3: a flat "packages" map keyed by install path
//     ("node_modules/@scope/name")
//   - lockfileVersion 1: a nested "dependencies" tree keyed by package name
//
// # Usage
//
//	lf, err := lockfile.ReadFile("package-lock.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if v, ok := lf.InstalledVersion("@angular/core"); ok {
//	    fmt.Println("installed", v)
//	}
package lockfile
