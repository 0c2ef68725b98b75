package source

// swiftStubIndex mirrors the exported surface of the vendor's macOS
// Swift addon so the renderer can require it without crashing on Linux.
const swiftStubIndex = `const EventEmitter = require("events");

class SwiftAddonStub extends EventEmitter {
  constructor() { super(); }
  helloWorldClaudeSwift(input = "") { return ""; }
  toggleOverlayVisible() {}
  showOverlay() {}
  hideOverlay() {}
  showDictation(mode) {}
  toggleDictation(mode) {}
  hideDictationAndPotentiallySubmit() {}
  setRecentChats(chats) {}
  setActiveChatId(chatId) {}
  setLoggedIn(loggedIn) {}
  setDictationInfo(baseURL, cookieHeader, languageCode) {}
  getOpenDocuments() { return []; }
  getOpenWindows() { return []; }
  captureWindowScreenshot(windowId) { return Promise.resolve(null); }
}

module.exports = new SwiftAddonStub();
`

const swiftStubPackage = `{
  "name": "@ant/claude-swift",
  "version": "1.0.0",
  "description": "Linux stub for macOS Swift addon",
  "main": "index.js",
  "private": true
}
`
